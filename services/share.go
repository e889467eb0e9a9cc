package services

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/rpupo63/portfolio-backend/config"
	"github.com/rpupo63/portfolio-backend/models"
)

const linkedInShareEndpoint = "https://www.linkedin.com/sharing/share-offsite/"

// FormatHashtag turns a technology name into a hashtag body: letters, digits and underscores only,
// lower case, never starting with a digit. It returns "" when nothing usable remains.
func FormatHashtag(tag string) string {
	var result strings.Builder
	for _, r := range strings.TrimSpace(tag) {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			result.WriteRune(r)
		}
	}
	formatted := strings.ToLower(result.String())
	if formatted != "" && formatted[0] >= '0' && formatted[0] <= '9' {
		return ""
	}
	return formatted
}

// GetBaseURL returns the public site URL, preferring SITE_BASE_URL over BASE_URL.
func GetBaseURL(cfg map[string]string) string {
	if baseURL := config.GetString(cfg, "SITE_BASE_URL", ""); baseURL != "" {
		return strings.TrimSuffix(baseURL, "/")
	}
	return strings.TrimSuffix(config.GetString(cfg, "BASE_URL", ""), "/")
}

// BuildProjectURL is the public page of a project, or "" without a base URL.
func BuildProjectURL(baseURL, projectID string) string {
	if baseURL == "" || projectID == "" {
		return ""
	}
	return fmt.Sprintf("%s/project/%s", strings.TrimSuffix(baseURL, "/"), projectID)
}

// LinkedInShareURL builds the LinkedIn share link for a published project.
func LinkedInShareURL(baseURL string, project *models.Project) string {
	projectURL := BuildProjectURL(baseURL, project.ID.String())
	if projectURL == "" {
		return ""
	}

	summary := "Check out this project: " + project.Title
	var hashtags []string
	for _, tech := range project.TechnologyList() {
		if tag := FormatHashtag(tech); tag != "" {
			hashtags = append(hashtags, "#"+tag)
		}
	}
	if len(hashtags) > 0 {
		summary += " " + strings.Join(hashtags, " ")
	}

	q := url.Values{}
	q.Set("url", projectURL)
	q.Set("title", project.Title)
	q.Set("summary", summary)
	return linkedInShareEndpoint + "?" + q.Encode()
}
