package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	twilioapi "github.com/twilio/twilio-go/rest/api/v2010"
)

func TestEmailNotifier(t *testing.T) {
	var got ResendEmailRequest
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"id":"email-1"}`))
	}))
	defer srv.Close()

	n := NewEmailNotifier("re_key", "site@example.com", []string{"owner@example.com"})
	n.endpoint = srv.URL
	n.client = srv.Client()

	err := n.NotifyComment(context.Background(), CommentNotice{
		ProjectTitle: "Site",
		Author:       "alice",
		Content:      "<script>alert(1)</script>",
		ProjectURL:   "https://example.com/project/1",
	})
	require.NoError(t, err)
	assert.Equal(t, "Bearer re_key", auth)
	assert.Equal(t, "site@example.com", got.From)
	assert.Equal(t, []string{"owner@example.com"}, got.To)
	assert.Equal(t, "New comment on Site", got.Subject)
	assert.Contains(t, got.Html, "&lt;script&gt;")
	assert.NotContains(t, got.Html, "<script>")
	assert.Contains(t, got.Html, "https://example.com/project/1")
}

func TestEmailNotifierErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"message":"invalid from address"}`))
	}))
	defer srv.Close()

	n := NewEmailNotifier("re_key", "bad", []string{"owner@example.com"})
	n.endpoint = srv.URL
	n.client = srv.Client()
	err := n.SendEmail(context.Background(), "subject", "body")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid from address")

	empty := NewEmailNotifier("re_key", "site@example.com", nil)
	assert.Error(t, empty.SendEmail(context.Background(), "subject", "body"))
}

type fakeMessages struct {
	params *twilioapi.CreateMessageParams
	err    error
}

func (f *fakeMessages) CreateMessage(params *twilioapi.CreateMessageParams) (*twilioapi.ApiV2010Message, error) {
	f.params = params
	if f.err != nil {
		return nil, f.err
	}
	sid := "SM123"
	return &twilioapi.ApiV2010Message{Sid: &sid}, nil
}

func TestSMSNotifier(t *testing.T) {
	api := &fakeMessages{}
	n := NewSMSNotifier(api, "+15550000000", "+15551111111")

	long := make([]rune, 200)
	for i := range long {
		long[i] = 'x'
	}
	err := n.NotifyComment(context.Background(), CommentNotice{ProjectTitle: "Site", Author: "alice", Content: string(long)})
	require.NoError(t, err)
	require.NotNil(t, api.params)
	assert.Equal(t, "+15550000000", *api.params.From)
	assert.Equal(t, "+15551111111", *api.params.To)
	assert.Contains(t, *api.params.Body, "New comment by alice on Site: ")
	assert.Contains(t, *api.params.Body, string(long[:120])+"...")

	api.err = errors.New("twilio down")
	assert.Error(t, n.NotifyComment(context.Background(), CommentNotice{}))
}

type failingNotifier struct{ calls int }

func (f *failingNotifier) NotifyComment(context.Context, CommentNotice) error {
	f.calls++
	return errors.New("channel down")
}

func TestMultiNotifier(t *testing.T) {
	a, b := &failingNotifier{}, &failingNotifier{}
	err := MultiNotifier{a, b}.NotifyComment(context.Background(), CommentNotice{})
	require.Error(t, err)
	assert.Equal(t, 1, a.calls)
	assert.Equal(t, 1, b.calls)

	assert.NoError(t, MultiNotifier{}.NotifyComment(context.Background(), CommentNotice{}))
}

func TestNewNotifierFromConfig(t *testing.T) {
	assert.Nil(t, NewNotifierFromConfig(map[string]string{}))
	assert.Nil(t, NewNotifierFromConfig(map[string]string{"RESEND_API_KEY": "key"}))

	n := NewNotifierFromConfig(map[string]string{
		"RESEND_API_KEY":     "key",
		"RESEND_FROM_EMAIL":  "site@example.com",
		"OWNER_EMAIL":        "owner@example.com",
		"TWILIO_ACCOUNT_SID": "AC123",
		"TWILIO_AUTH_TOKEN":  "token",
		"TWILIO_FROM_NUMBER": "+15550000000",
		"TWILIO_TO_NUMBER":   "+15551111111",
	})
	multi, ok := n.(MultiNotifier)
	require.True(t, ok)
	require.Len(t, multi, 2)
	email, ok := multi[0].(*EmailNotifier)
	require.True(t, ok)
	assert.Equal(t, []string{"owner@example.com"}, email.recipients)
	assert.IsType(t, &SMSNotifier{}, multi[1])
}
