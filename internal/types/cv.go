// Package types provides type definitions for the CV documents exchanged with the remote CV service.
package types

import (
	"time"
)

// PersonalInfo is the singleton contact block at the top of a CV.
type PersonalInfo struct {
	NamaLengkap   string `json:"namaLengkap" validate:"required"`
	Email         string `json:"email" validate:"required"`
	NomorHp       string `json:"nomorHp"`
	LinkedinURL   string `json:"linkedinUrl"`
	PortofolioURL string `json:"portofolioUrl"`
	Alamat        string `json:"alamat"`
}

// Education is one entry of the education history.
type Education struct {
	Institution       string `json:"institution"`
	Location          string `json:"location"`
	StartYear         string `json:"startYear"`
	EndYear           string `json:"endYear"`
	EducationLevel    string `json:"educationLevel"`
	Program           string `json:"program"`
	GPA               string `json:"gpa"`
	MaxGPA            string `json:"maxGpa"`
	Description       string `json:"description"` // HTML fragment
	CurrentlyStudying bool   `json:"currentlyStudying"`
}

// EffectiveEndYear returns the end year, or "" while the entry is still ongoing.
func (e Education) EffectiveEndYear() string {
	if e.CurrentlyStudying {
		return ""
	}
	return e.EndYear
}

// WorkExperience is one entry of the work history.
type WorkExperience struct {
	Institution      string `json:"institution"`
	Position         string `json:"position"`
	EmployeeStatus   string `json:"employeeStatus"`
	StartDate        string `json:"startDate"`
	EndDate          string `json:"endDate"`
	Location         string `json:"location"`
	Description      string `json:"description"` // HTML fragment
	CurrentlyWorking bool   `json:"currentlyWorking"`
}

// EffectiveEndDate returns the end date, or "" while the position is still held.
func (w WorkExperience) EffectiveEndDate() string {
	if w.CurrentlyWorking {
		return ""
	}
	return w.EndDate
}

// Certification is one entry of the certifications list.
type Certification struct {
	Name   string `json:"name"`
	Issuer string `json:"issuer"`
	Number string `json:"number"`
	Year   string `json:"year"`
}

// Award is one entry of the awards list.
type Award struct {
	Name   string `json:"name"`
	Issuer string `json:"issuer"`
	Year   string `json:"year"`
}

// Skills holds three free-text, comma separated skill lines.
type Skills struct {
	HardSkills     string `json:"hardSkills"`
	SoftSkills     string `json:"softSkills"`
	SoftwareSkills string `json:"softwareSkills"`
}

// CV is the root document. Sub-record identity is positional.
type CV struct {
	ID               string           `json:"id"`
	FileName         string           `json:"fileName"`
	CreatedAt        Timestamp        `json:"createdAt"`
	UpdatedAt        Timestamp        `json:"updatedAt"`
	PersonalInfo     PersonalInfo     `json:"personalInfo"`
	Objective        string           `json:"objective"` // HTML fragment
	EducationHistory []Education      `json:"educationHistory"`
	WorkExperience   []WorkExperience `json:"workExperience"`
	Certifications   []Certification  `json:"certifications"`
	Awards           []Award          `json:"awards"`
	Skills           Skills           `json:"skills"`
}

// NewCV returns the default shape of a freshly created document.
func NewCV(id, fileName string) CV {
	return CV{
		ID:               id,
		FileName:         fileName,
		EducationHistory: []Education{},
		WorkExperience:   []WorkExperience{},
		Certifications:   []Certification{},
		Awards:           []Award{},
	}
}

// Normalize replaces nil lists with empty ones so the document always
// serializes lists as arrays.
func (c *CV) Normalize() {
	if c.EducationHistory == nil {
		c.EducationHistory = []Education{}
	}
	if c.WorkExperience == nil {
		c.WorkExperience = []WorkExperience{}
	}
	if c.Certifications == nil {
		c.Certifications = []Certification{}
	}
	if c.Awards == nil {
		c.Awards = []Award{}
	}
}

// Clone returns a deep copy of the document.
func (c CV) Clone() CV {
	out := c
	out.EducationHistory = append([]Education{}, c.EducationHistory...)
	out.WorkExperience = append([]WorkExperience{}, c.WorkExperience...)
	out.Certifications = append([]Certification{}, c.Certifications...)
	out.Awards = append([]Award{}, c.Awards...)
	return out
}

// LastModified returns the more recent of UpdatedAt and CreatedAt.
func (c CV) LastModified() time.Time {
	if c.UpdatedAt.Time.After(c.CreatedAt.Time) {
		return c.UpdatedAt.Time
	}
	return c.CreatedAt.Time
}

// Summary returns the collection view projection of the document.
func (c CV) Summary() Summary {
	return Summary{
		ID:           c.ID,
		FileName:     c.FileName,
		Name:         c.PersonalInfo.NamaLengkap,
		Email:        c.PersonalInfo.Email,
		LastModified: c.LastModified(),
	}
}

// Summary is the read-only view of a CV shown in the collection.
type Summary struct {
	ID           string    `json:"id"`
	FileName     string    `json:"fileName"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	LastModified time.Time `json:"lastModified"`
}

// User is a registered user as returned by the remote service.
type User struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
