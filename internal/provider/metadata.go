package provider

import (
	"strconv"
	"strings"

	"github.com/palantir/angellist-enrichment-connector/internal/entity"
	"github.com/palantir/angellist-enrichment-connector/internal/external"
	"github.com/palantir/angellist-enrichment-connector/pkg/angellist"
)

func organizationCode(id int64) entity.Code {
	return entity.NewCode(entity.TypeOrganization, Origin, id)
}

func personCode(id int64) entity.Code {
	return entity.NewCode(entity.TypePerson, Origin, id)
}

func tagCode(id int64) entity.Code {
	return entity.NewCode(entity.TypeTag, Origin, id)
}

// PrimaryMetadata projects a result onto entity metadata without follow-up work.
func (p *Provider) PrimaryMetadata(r external.Result) (*entity.Metadata, bool) {
	switch res := r.(type) {
	case *OrganizationResult:
		if res == nil {
			return nil, false
		}
		md := organizationMetadata(&res.Startup)
		return &md, true
	case *PersonResult:
		if res == nil {
			return nil, false
		}
		md := personMetadata(&res.User)
		return &md, true
	default:
		return nil, false
	}
}

// PrimaryPreviewImage returns the logo (organization) or portrait (person) reference.
func (p *Provider) PrimaryPreviewImage(r external.Result) (*external.ImageRef, bool) {
	switch res := r.(type) {
	case *OrganizationResult:
		if res == nil || strings.TrimSpace(res.Startup.LogoURL) == "" {
			return nil, false
		}
		return &external.ImageRef{URL: strings.TrimSpace(res.Startup.LogoURL), Owner: organizationCode(res.Startup.ID)}, true
	case *PersonResult:
		if res == nil || strings.TrimSpace(res.User.Image) == "" {
			return nil, false
		}
		return &external.ImageRef{URL: strings.TrimSpace(res.User.Image), Owner: personCode(res.User.ID)}, true
	default:
		return nil, false
	}
}

func organizationMetadata(s *angellist.Startup) entity.Metadata {
	md := entity.NewMetadata(entity.TypeOrganization, organizationCode(s.ID))
	md.Name = strings.TrimSpace(s.Name)
	md.Description = strings.TrimSpace(s.ProductDesc)

	md.Set(OrgID, strconv.FormatInt(s.ID, 10))
	md.Set(OrgName, s.Name)
	md.Set(OrgAngelListURL, s.AngelListURL)
	md.Set(OrgBlogURL, s.BlogURL)
	md.Set(OrgCommunityProfile, strconv.FormatBool(s.CommunityProfile))
	md.Set(OrgCompanyURL, s.CompanyURL)
	md.Set(OrgCreatedAt, s.CreatedAt)
	md.Set(OrgFollowerCount, strconv.Itoa(s.FollowerCount))
	md.Set(OrgHidden, strconv.FormatBool(s.Hidden))
	md.Set(OrgHighConcept, s.HighConcept)
	md.Set(OrgLogoURL, s.LogoURL)
	md.Set(OrgQuality, strconv.Itoa(s.Quality))
	if s.Status != nil {
		md.Set(OrgStatusCreatedAt, s.Status.CreatedAt)
		md.Set(OrgStatusMessage, s.Status.Message)
	}
	md.Set(OrgThumbURL, s.ThumbURL)
	md.Set(OrgCrunchbaseURL, s.CrunchbaseURL)
	md.Set(OrgTwitterURL, s.TwitterURL)
	md.Set(OrgFacebookURL, s.FacebookURL)
	md.Set(OrgLinkedInURL, s.LinkedInURL)
	md.Set(OrgUpdatedAt, s.UpdatedAt)
	md.Set(OrgVideoURL, s.VideoURL)
	md.Set(OrgLaunchDate, s.LaunchDate)
	md.Set(OrgProductDesc, s.ProductDesc)
	md.Set(OrgCompanySize, s.CompanySize)

	for _, group := range [][]angellist.Tag{s.Locations, s.Markets, s.CompanyType} {
		for _, t := range group {
			if t.ID == 0 && t.Label() == "" {
				continue
			}
			md.Tags = append(md.Tags, entity.Tag{Name: t.Label(), Code: tagCode(t.ID)})
		}
	}
	return md
}

func personMetadata(u *angellist.User) entity.Metadata {
	md := entity.NewMetadata(entity.TypePerson, personCode(u.ID))
	md.Name = strings.TrimSpace(u.Name)

	md.Set(PersonID, strconv.FormatInt(u.ID, 10))
	md.Set(PersonName, u.Name)
	md.Set(PersonBio, u.Bio)
	md.Set(PersonAngellistURL, u.AngelListURL)
	md.Set(PersonAboutmeURL, u.AboutMeURL)
	md.Set(PersonBehanceURL, u.BehanceURL)
	md.Set(PersonBlogURL, u.BlogURL)
	md.Set(PersonDribbbleURL, u.DribbbleURL)
	md.Set(PersonFacebookURL, u.FacebookURL)
	md.Set(PersonGithubURL, u.GithubURL)
	md.Set(PersonLinkedinURL, u.LinkedInURL)
	md.Set(PersonOnlineBioURL, u.OnlineBioURL)
	md.Set(PersonResumeURL, u.ResumeURL)
	md.Set(PersonTwitterURL, u.TwitterURL)
	md.Set(PersonFollowerCount, strconv.Itoa(u.FollowerCount))
	md.Set(PersonImage, u.Image)
	md.Set(PersonInvestor, strconv.FormatBool(u.Investor))
	md.Set(PersonWhatIDo, u.WhatIDo)
	md.Set(PersonWhatIveBuilt, u.WhatIveBuilt)
	if len(u.Locations) > 0 {
		md.Set(PersonLocation, u.Locations[0].Label())
	}

	var skills []string
	for _, s := range u.Skills {
		label := strings.TrimSpace(s.DisplayName)
		if label == "" {
			label = strings.TrimSpace(s.Name)
		}
		if label != "" {
			skills = append(skills, label)
		}
	}
	md.Set(PersonSkills, strings.Join(skills, ","))
	return md
}
