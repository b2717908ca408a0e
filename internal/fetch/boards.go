package fetch

import (
	"net/url"
	"strings"
)

// Board describes where a job board keeps the description and what to cut around it
type Board struct {
	Name    string
	hosts   []string
	Content []string
	Noise   []string
}

// Shared noise: application forms, EEO blocks, share widgets, consent banners
var commonNoise = []string{
	"form", "#application-form", ".application-form", ".apply-button-container",
	".eeo-statement", ".eeo-section", ".voluntary-disclosure", ".self-identification",
	".social-share", ".share-buttons", ".cookie-banner", ".cookie-consent", ".gdpr-notice",
}

// GenericBoard is used for hosts no board entry claims
var GenericBoard = Board{
	Name: "generic",
	Content: []string{
		".job-description", "#job-description", ".job-details", ".posting-content",
		"[data-testid='job-description']", "main", "article", "#content", ".content",
	},
}

var boards = []Board{
	{
		Name:    "greenhouse",
		hosts:   []string{"greenhouse.io"},
		Content: []string{".job__description", ".job-post-content", "#content"},
		Noise:   []string{".application--wrapper", "#usa_self_id_section", ".post-apply"},
	},
	{
		Name:    "lever",
		hosts:   []string{"lever.co"},
		Content: []string{".posting-page .section-wrapper", ".posting-description", ".content"},
		Noise:   []string{".posting-apply", ".apply-section"},
	},
	{
		Name:    "workday",
		hosts:   []string{"myworkdayjobs.com", "workday.com"},
		Content: []string{"[data-automation-id='jobPostingDescription']", "[data-automation-id='jobDescription']"},
		Noise:   []string{"[data-automation-id='applyButton']"},
	},
	{
		Name:    "ashby",
		hosts:   []string{"ashbyhq.com"},
		Content: []string{"._descriptionText", "[class*='descriptionText']", "main"},
	},
	{
		Name:    "smartrecruiters",
		hosts:   []string{"smartrecruiters.com"},
		Content: []string{".job-sections", "[itemprop='description']", "main"},
	},
}

// BoardFor picks the board whose host suffix matches rawURL
func BoardFor(rawURL string) Board {
	u, err := url.Parse(rawURL)
	if err != nil {
		return GenericBoard
	}
	host := strings.ToLower(u.Hostname())
	for _, b := range boards {
		for _, h := range b.hosts {
			if host == h || strings.HasSuffix(host, "."+h) {
				return b
			}
		}
	}
	return GenericBoard
}

func (b Board) noise() []string {
	return append(append([]string{}, commonNoise...), b.Noise...)
}
