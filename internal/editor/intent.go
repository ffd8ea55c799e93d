// Package editor implements the pure edit reducer for CV documents.
//
// Every edit is described by an Intent value and applied with Apply, which never
// mutates its input and always reflects exactly one intent in the returned State.
package editor

// Intent is a single edit operation. The set of intents is closed.
type Intent interface {
	isIntent()
}

// ListName identifies one of the repeated sub-record lists.
type ListName int

const (
	ListEducation ListName = iota + 1
	ListWork
	ListCertifications
	ListAwards
)

var listNames = map[ListName]string{
	ListEducation:      "educationHistory",
	ListWork:           "workExperience",
	ListCertifications: "certifications",
	ListAwards:         "awards",
}

func (l ListName) String() string {
	if name, ok := listNames[l]; ok {
		return name
	}
	return "unknown"
}

// PersonalInfoField addresses a field of types.PersonalInfo.
type PersonalInfoField int

const (
	PersonalName PersonalInfoField = iota + 1
	PersonalEmail
	PersonalPhone
	PersonalLinkedin
	PersonalPortfolio
	PersonalAddress
)

// SkillsField addresses a field of types.Skills.
type SkillsField int

const (
	SkillsHard SkillsField = iota + 1
	SkillsSoft
	SkillsSoftware
)

// EducationField addresses a string field of types.Education.
type EducationField int

const (
	EducationInstitution EducationField = iota + 1
	EducationLocation
	EducationStartYear
	EducationEndYear
	EducationLevel
	EducationProgram
	EducationGPA
	EducationMaxGPA
)

// WorkField addresses a string field of types.WorkExperience.
type WorkField int

const (
	WorkInstitution WorkField = iota + 1
	WorkPosition
	WorkEmployeeStatus
	WorkStartDate
	WorkEndDate
	WorkLocation
)

// CertificationField addresses a field of types.Certification.
type CertificationField int

const (
	CertificationName CertificationField = iota + 1
	CertificationIssuer
	CertificationNumber
	CertificationYear
)

// AwardField addresses a field of types.Award.
type AwardField int

const (
	AwardName AwardField = iota + 1
	AwardIssuer
	AwardYear
)

// SetPersonalInfo replaces one personal info field.
type SetPersonalInfo struct {
	Field PersonalInfoField
	Value string
}

// SetSkills replaces one skills line.
type SetSkills struct {
	Field SkillsField
	Value string
}

// SetObjective replaces the objective HTML wholesale. No sanitization happens here.
type SetObjective struct {
	HTML string
}

// SetDescription replaces the description HTML of an education or work entry.
type SetDescription struct {
	List  ListName
	Index int
	HTML  string
}

// AddSubRecord appends an empty record to the end of List.
type AddSubRecord struct {
	List ListName
}

// RemoveSubRecord removes the record at Index, shifting later records down.
type RemoveSubRecord struct {
	List  ListName
	Index int
}

// SetEducationField replaces a string field of one education entry.
type SetEducationField struct {
	Index int
	Field EducationField
	Value string
}

// SetCurrentlyStudying sets the ongoing flag of one education entry.
// Setting it clears the end year.
type SetCurrentlyStudying struct {
	Index int
	Value bool
}

// SetWorkField replaces a string field of one work entry.
type SetWorkField struct {
	Index int
	Field WorkField
	Value string
}

// SetCurrentlyWorking sets the ongoing flag of one work entry.
// Setting it clears the end date.
type SetCurrentlyWorking struct {
	Index int
	Value bool
}

// SetCertificationField replaces a field of one certification.
type SetCertificationField struct {
	Index int
	Field CertificationField
	Value string
}

// SetAwardField replaces a field of one award.
type SetAwardField struct {
	Index int
	Field AwardField
	Value string
}

// ToggleSection flips the expanded flag of a form section. Presentation state only.
type ToggleSection struct {
	Section Section
}

func (SetPersonalInfo) isIntent()       {}
func (SetSkills) isIntent()             {}
func (SetObjective) isIntent()          {}
func (SetDescription) isIntent()        {}
func (AddSubRecord) isIntent()          {}
func (RemoveSubRecord) isIntent()       {}
func (SetEducationField) isIntent()     {}
func (SetCurrentlyStudying) isIntent()  {}
func (SetWorkField) isIntent()          {}
func (SetCurrentlyWorking) isIntent()   {}
func (SetCertificationField) isIntent() {}
func (SetAwardField) isIntent()         {}
func (ToggleSection) isIntent()         {}

// ChangesDocument reports whether applying in can change the persisted document.
func ChangesDocument(in Intent) bool {
	_, presentation := in.(ToggleSection)
	return !presentation
}
