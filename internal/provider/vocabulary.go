package provider

// Vocabulary keys written into clue properties.
const (
	orgPrefix    = "angelList.organization."
	personPrefix = "angelList.person."
)

// Organization keys.
const (
	OrgID               = orgPrefix + "id"
	OrgName             = orgPrefix + "name"
	OrgAngelListURL     = orgPrefix + "angelListUrl"
	OrgBlogURL          = orgPrefix + "blogUrl"
	OrgCommunityProfile = orgPrefix + "communityProfile"
	OrgCompanyURL       = orgPrefix + "companyUrl"
	OrgCreatedAt        = orgPrefix + "createdAt"
	OrgFollowerCount    = orgPrefix + "followerCount"
	OrgHidden           = orgPrefix + "hidden"
	OrgHighConcept      = orgPrefix + "highConcept"
	OrgLogoURL          = orgPrefix + "logoUrl"
	OrgQuality          = orgPrefix + "quality"
	OrgStatusCreatedAt  = orgPrefix + "statusCreatedAt"
	OrgStatusMessage    = orgPrefix + "statusMessage"
	OrgThumbURL         = orgPrefix + "thumbUrl"
	OrgCrunchbaseURL    = orgPrefix + "crunchbaseUrl"
	OrgTwitterURL       = orgPrefix + "twitterUrl"
	OrgFacebookURL      = orgPrefix + "facebookUrl"
	OrgLinkedInURL      = orgPrefix + "linkedInUrl"
	OrgUpdatedAt        = orgPrefix + "updatedAt"
	OrgVideoURL         = orgPrefix + "videoUrl"
	OrgLaunchDate       = orgPrefix + "launchDate"
	OrgProductDesc      = orgPrefix + "productDesc"
	OrgCompanySize      = orgPrefix + "companySize"
)

// Person keys.
const (
	PersonID            = personPrefix + "id"
	PersonName          = personPrefix + "name"
	PersonOrganization  = personPrefix + "organization"
	PersonRole          = personPrefix + "role"
	PersonBio           = personPrefix + "bio"
	PersonInvestor      = personPrefix + "investor"
	PersonLocation      = personPrefix + "location"
	PersonSkills        = personPrefix + "skills"
	PersonImage         = personPrefix + "image"
	PersonWhatIDo       = personPrefix + "whatIDo"
	PersonWhatIveBuilt  = personPrefix + "whatIveBuilt"
	PersonAngellistURL  = personPrefix + "angellistUrl"
	PersonAboutmeURL    = personPrefix + "aboutmeUrl"
	PersonBehanceURL    = personPrefix + "behanceUrl"
	PersonBlogURL       = personPrefix + "blogUrl"
	PersonDribbbleURL   = personPrefix + "dribbbleUrl"
	PersonFacebookURL   = personPrefix + "facebookUrl"
	PersonFollowerCount = personPrefix + "followerCount"
	PersonGithubURL     = personPrefix + "githubUrl"
	PersonLinkedinURL   = personPrefix + "linkedinUrl"
	PersonOnlineBioURL  = personPrefix + "onlineBioUrl"
	PersonResumeURL     = personPrefix + "resumeUrl"
	PersonTwitterURL    = personPrefix + "twitterUrl"
)
