package domain

import (
	"context"
	"errors"
	"time"
)

// Error taxonomy (sentinels)
var (
	ErrInvalidArgument   = errors.New("invalid argument")
	ErrNotFound          = errors.New("not found")
	ErrConflict          = errors.New("conflict")
	ErrUnsupportedFormat = errors.New("unsupported format")
	ErrNoData            = errors.New("no data")
	ErrUpstreamTimeout   = errors.New("upstream timeout")
	ErrUpstreamRateLimit = errors.New("upstream rate limit")
	ErrSchemaInvalid     = errors.New("schema invalid")
	ErrInternal          = errors.New("internal error")
)

// JobStatus enumerates the lifecycle of an ingest job.
type JobStatus string

const (
	JobQueued     JobStatus = "queued"
	JobProcessing JobStatus = "processing"
	JobCompleted  JobStatus = "completed"
	JobFailed     JobStatus = "failed"
)

// IngestJob tracks the processing of a single resume file.
type IngestJob struct {
	ID         string
	Status     JobStatus
	Error      string
	FileKey    string
	SourceHash string
	RecordID   string
	IdemKey    *string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// RawEducation is an education entry as submitted upstream.
type RawEducation struct {
	Degree         string `json:"degree"`
	Specialization string `json:"specialization"`
	Institution    string `json:"institution"`
	Year           string `json:"year"`
}

// RawEmployment is an employment entry as submitted upstream.
type RawEmployment struct {
	Designation string `json:"designation"`
	CompanyName string `json:"companyName"`
	From        string `json:"from"`
	To          string `json:"to"`
	Location    string `json:"location"`
	Description string `json:"description"`
}

// RawProject is a project entry as submitted upstream.
type RawProject struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	TechStack   []string `json:"techStack"`
	Tools       []string `json:"tools"`
	Duration    string   `json:"duration"`
}

// RawCertificate is a certificate entry as submitted upstream.
type RawCertificate struct {
	CertificateName string `json:"certificateName"`
}

// RawResume is a candidate-submitted record as stored upstream.
// All fields are free-form and may be empty; ResumeParseData carries the raw
// parsed text of the source document, optionally as a JSON-encoded structure
// produced by a third-party parser. The record is read-only to this service.
type RawResume struct {
	ID                 string           `json:"id"`
	FName              string           `json:"fName"`
	LName              string           `json:"lName"`
	Email              string           `json:"email"`
	Number             string           `json:"number"`
	DevDesg            string           `json:"devDesg"`
	DevCSalary         string           `json:"devCSalary"`
	DevESalary         string           `json:"devESalary"`
	DevNoticePeriod    string           `json:"devNoticePeriod"`
	DevCity            string           `json:"devCity"`
	DevState           string           `json:"devState"`
	DevCountryCode     string           `json:"devCountryCode"`
	DevTotalExperience string           `json:"devTotalExperience"`
	DevAcademic        []RawEducation   `json:"devAcademic"`
	DevEmployment      []RawEmployment  `json:"devEmployment"`
	DevProjectDetails  []RawProject     `json:"devProjectDetails"`
	DevSkills          []string         `json:"devSkills"`
	DevLanguages       []string         `json:"devLanguages"`
	DevCertificates    []RawCertificate `json:"devCertificates"`
	JobPreference      []string         `json:"jobPreference"`
	SocialProfiles     []string         `json:"socialProfiles"`
	ResumeParseData    string           `json:"resumeParseData"`
}

// EmploymentEntry is a reconciled employment history item.
// Invariant: From, when parseable, precedes To; a "Present" To is open-ended.
type EmploymentEntry struct {
	Designation string `json:"designation"`
	Company     string `json:"company"`
	From        string `json:"from"`
	To          string `json:"to"`
	Location    string `json:"location"`
	Description string `json:"description"`
}

// EducationEntry is a reconciled education history item.
type EducationEntry struct {
	Degree         string `json:"degree"`
	Specialization string `json:"specialization"`
	Institution    string `json:"institution"`
	Year           string `json:"year"`
}

// ProjectEntry is a reconciled project item.
type ProjectEntry struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	TechStack   []string `json:"techStack"`
	Tools       []string `json:"tools"`
	SoftSkills  []string `json:"softSkills"`
	Duration    string   `json:"duration"`
}

// Location is a normalized geographic triple with optional coordinates.
type Location struct {
	City        string       `json:"city"`
	State       string       `json:"state"`
	Country     string       `json:"country"`
	Coordinates *Coordinates `json:"coordinates,omitempty"`
}

// Coordinates is a latitude/longitude pair in decimal degrees.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// CleanedResume is the output of one reconciliation pass. It is assembled
// once and treated as an immutable snapshot by downstream consumers.
type CleanedResume struct {
	SourceHash       string            `json:"sourceHash"`
	FullName         string            `json:"fullName"`
	Email            string            `json:"email"`
	Phone            string            `json:"phone"`
	JobTitle         string            `json:"jobTitle"`
	City             string            `json:"city"`
	State            string            `json:"state"`
	CountryCode      string            `json:"countryCode"`
	CurrentSalary    string            `json:"currentSalary"`
	ExpectedSalary   string            `json:"expectedSalary"`
	NoticePeriod     string            `json:"noticePeriod"`
	TotalExperience  string            `json:"totalExperience"`
	SocialProfiles   []string          `json:"socialProfiles"`
	Employment       []EmploymentEntry `json:"employment"`
	Education        []EducationEntry  `json:"education"`
	Projects         []ProjectEntry    `json:"projects"`
	Skills           []string          `json:"skills"`
	Languages        []string          `json:"languages"`
	Certifications   []string          `json:"certifications"`
	JobPreference    []string          `json:"jobPreference"`
	StabilityMonths  float64           `json:"stabilityMonths"`
	ResolvedLocation *Location         `json:"resolvedLocation,omitempty"`
	CreatedAt        time.Time         `json:"createdAt"`
}

// CompanyProfile is the enrichment output for one employer. When the
// completion response cannot be decoded, Error and RawResponse carry the
// diagnostic payload instead of the structured sub-objects.
type CompanyProfile struct {
	CompanyName    string                `json:"company_name"`
	Classification CompanyClassification `json:"classification"`
	Profile        CompanyProfileDetail  `json:"profile"`
	WorkEnv        CompanyWorkEnv        `json:"work_environment"`
	Error          string                `json:"error,omitempty"`
	RawResponse    string                `json:"raw_response,omitempty"`
}

// CompanyClassification describes what kind of company an employer is.
type CompanyClassification struct {
	Type          string `json:"type"`
	Industry      string `json:"industry"`
	Size          string `json:"size"`
	BusinessModel string `json:"business_model"`
}

// CompanyProfileDetail describes an employer's business profile.
type CompanyProfileDetail struct {
	PrimaryFocus    string   `json:"primary_focus"`
	TechOrDomain    []string `json:"technologies_or_domain"`
	MarketPosition  string   `json:"market_position"`
	Characteristics string   `json:"notable_characteristics"`
}

// CompanyWorkEnv describes an employer's working environment.
type CompanyWorkEnv struct {
	Culture         string   `json:"culture"`
	TechStack       []string `json:"tech_stack"`
	InnovationLevel string   `json:"innovation_level"`
	GrowthPotential string   `json:"growth_potential"`
}

// IngestTaskPayload is the queue message for one resume ingest job.
type IngestTaskPayload struct {
	JobID   string `json:"job_id"`
	FileKey string `json:"file_key"`
	RawID   string `json:"raw_id,omitempty"`
}

// Context is an alias so domain signatures stay decoupled from adapters.
type Context = context.Context
