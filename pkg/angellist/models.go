package angellist

import "strings"

// SearchResult is one candidate returned by /1/search.
type SearchResult struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	URL  string `json:"url"`
	Pic  string `json:"pic,omitempty"`
	Type string `json:"type,omitempty"`
}

// Tag is a location, market or company type classification.
type Tag struct {
	ID           int64  `json:"id"`
	TagType      string `json:"tag_type,omitempty"`
	Name         string `json:"name,omitempty"`
	DisplayName  string `json:"display_name,omitempty"`
	AngelListURL string `json:"angellist_url,omitempty"`
}

// Label prefers the display name.
func (t Tag) Label() string {
	if s := strings.TrimSpace(t.DisplayName); s != "" {
		return s
	}
	return strings.TrimSpace(t.Name)
}

// Status is the latest status update posted on a startup profile.
type Status struct {
	ID        int64  `json:"id,omitempty"`
	Message   string `json:"message,omitempty"`
	CreatedAt string `json:"created_at,omitempty"`
}

// Screenshot is an image attached to a startup profile.
type Screenshot struct {
	Thumb    string `json:"thumb,omitempty"`
	Original string `json:"original,omitempty"`
}

// Startup is the full organization profile from /1/startups/{id}.
type Startup struct {
	ID               int64        `json:"id"`
	Hidden           bool         `json:"hidden"`
	CommunityProfile bool         `json:"community_profile"`
	Name             string       `json:"name"`
	AngelListURL     string       `json:"angellist_url,omitempty"`
	LogoURL          string       `json:"logo_url,omitempty"`
	ThumbURL         string       `json:"thumb_url,omitempty"`
	Quality          int          `json:"quality"`
	ProductDesc      string       `json:"product_desc,omitempty"`
	CompanySize      string       `json:"company_size,omitempty"`
	HighConcept      string       `json:"high_concept,omitempty"`
	FollowerCount    int          `json:"follower_count"`
	CompanyURL       string       `json:"company_url,omitempty"`
	CreatedAt        string       `json:"created_at,omitempty"`
	UpdatedAt        string       `json:"updated_at,omitempty"`
	CrunchbaseURL    string       `json:"crunchbase_url,omitempty"`
	TwitterURL       string       `json:"twitter_url,omitempty"`
	FacebookURL      string       `json:"facebook_url,omitempty"`
	LinkedInURL      string       `json:"linkedin_url,omitempty"`
	BlogURL          string       `json:"blog_url,omitempty"`
	VideoURL         string       `json:"video_url,omitempty"`
	LaunchDate       string       `json:"launch_date,omitempty"`
	Markets          []Tag        `json:"markets,omitempty"`
	CompanyType      []Tag        `json:"company_type,omitempty"`
	Locations        []Tag        `json:"locations,omitempty"`
	Status           *Status      `json:"status,omitempty"`
	Screenshots      []Screenshot `json:"screenshots,omitempty"`
}

// StartupRef is the abbreviated startup embedded in a role.
type StartupRef struct {
	ID               int64  `json:"id"`
	Hidden           bool   `json:"hidden"`
	CommunityProfile bool   `json:"community_profile"`
	Name             string `json:"name"`
	AngelListURL     string `json:"angellist_url,omitempty"`
	LogoURL          string `json:"logo_url,omitempty"`
	ThumbURL         string `json:"thumb_url,omitempty"`
	Quality          int    `json:"quality"`
	ProductDesc      string `json:"product_desc,omitempty"`
	HighConcept      string `json:"high_concept,omitempty"`
	FollowerCount    int    `json:"follower_count"`
	CompanyURL       string `json:"company_url,omitempty"`
	CreatedAt        string `json:"created_at,omitempty"`
	UpdatedAt        string `json:"updated_at,omitempty"`
}

// Tagged is the party a role links to a startup.
type Tagged struct {
	ID            int64  `json:"id"`
	Type          string `json:"type"`
	Name          string `json:"name"`
	AngelListURL  string `json:"angellist_url,omitempty"`
	Image         string `json:"image,omitempty"`
	Bio           string `json:"bio,omitempty"`
	FollowerCount int    `json:"follower_count"`
}

// IsPerson reports whether the tagged party is an individual. The directory labels
// people "User"; "Person" is accepted as well.
func (t *Tagged) IsPerson() bool {
	if t == nil {
		return false
	}
	typ := strings.TrimSpace(t.Type)
	return strings.EqualFold(typ, "User") || strings.EqualFold(typ, "Person")
}

// Role links a tagged party to a startup.
type Role struct {
	ID        int64      `json:"id"`
	Role      string     `json:"role"`
	CreatedAt string     `json:"created_at,omitempty"`
	StartedAt *string    `json:"started_at,omitempty"`
	EndedAt   *string    `json:"ended_at,omitempty"`
	Confirmed bool       `json:"confirmed"`
	Tagged    *Tagged    `json:"tagged,omitempty"`
	Startup   StartupRef `json:"startup"`
}

// RolesPage is one page of /1/startups/{id}/roles.
type RolesPage struct {
	StartupRoles []Role `json:"startup_roles"`
	Total        int    `json:"total"`
	PerPage      int    `json:"per_page"`
	Page         int    `json:"page"`
	LastPage     int    `json:"last_page"`
}

// PageCount is the number of pages the listing spans: last_page when reported,
// otherwise total.
func (p *RolesPage) PageCount() int {
	if p == nil {
		return 0
	}
	if p.LastPage > 0 {
		return p.LastPage
	}
	return p.Total
}

// Skill is a skill tag on a user profile.
type Skill struct {
	ID           int64   `json:"id"`
	TagType      string  `json:"tag_type,omitempty"`
	Name         string  `json:"name,omitempty"`
	DisplayName  string  `json:"display_name,omitempty"`
	AngelListURL string  `json:"angellist_url,omitempty"`
	Level        float64 `json:"level,omitempty"`
}

// UserRole is a role summary embedded in a user profile.
type UserRole struct {
	ID          int64  `json:"id"`
	Role        string `json:"role"`
	CreatedAt   string `json:"created_at,omitempty"`
	StartupID   int64  `json:"startup_id"`
	StartupName string `json:"startup_name,omitempty"`
}

// User is the person profile from /1/users/{id}.
type User struct {
	ID            int64      `json:"id"`
	Name          string     `json:"name"`
	Bio           string     `json:"bio,omitempty"`
	FollowerCount int        `json:"follower_count"`
	AngelListURL  string     `json:"angellist_url,omitempty"`
	Image         string     `json:"image,omitempty"`
	BlogURL       string     `json:"blog_url,omitempty"`
	OnlineBioURL  string     `json:"online_bio_url,omitempty"`
	TwitterURL    string     `json:"twitter_url,omitempty"`
	FacebookURL   string     `json:"facebook_url,omitempty"`
	LinkedInURL   string     `json:"linkedin_url,omitempty"`
	AboutMeURL    string     `json:"aboutme_url,omitempty"`
	GithubURL     string     `json:"github_url,omitempty"`
	DribbbleURL   string     `json:"dribbble_url,omitempty"`
	BehanceURL    string     `json:"behance_url,omitempty"`
	ResumeURL     string     `json:"resume_url,omitempty"`
	WhatIveBuilt  string     `json:"what_ive_built,omitempty"`
	WhatIDo       string     `json:"what_i_do,omitempty"`
	Locations     []Tag      `json:"locations,omitempty"`
	Roles         []UserRole `json:"roles,omitempty"`
	Skills        []Skill    `json:"skills,omitempty"`
	Investor      bool       `json:"investor"`
}
