package editor

import (
	"fmt"
	"strconv"
	"strings"
)

// PathError reports a field address that does not name an editable field.
type PathError struct {
	Path    string
	Message string
}

func (e *PathError) Error() string {
	return fmt.Sprintf("invalid field path %q: %s", e.Path, e.Message)
}

var personalInfoFields = map[string]PersonalInfoField{
	"namaLengkap":   PersonalName,
	"email":         PersonalEmail,
	"nomorHp":       PersonalPhone,
	"linkedinUrl":   PersonalLinkedin,
	"portofolioUrl": PersonalPortfolio,
	"alamat":        PersonalAddress,
}

var skillsFields = map[string]SkillsField{
	"hardSkills":     SkillsHard,
	"softSkills":     SkillsSoft,
	"softwareSkills": SkillsSoftware,
}

var educationFields = map[string]EducationField{
	"institution":    EducationInstitution,
	"location":       EducationLocation,
	"startYear":      EducationStartYear,
	"endYear":        EducationEndYear,
	"educationLevel": EducationLevel,
	"program":        EducationProgram,
	"gpa":            EducationGPA,
	"maxGpa":         EducationMaxGPA,
}

var workFields = map[string]WorkField{
	"institution":    WorkInstitution,
	"position":       WorkPosition,
	"employeeStatus": WorkEmployeeStatus,
	"startDate":      WorkStartDate,
	"endDate":        WorkEndDate,
	"location":       WorkLocation,
}

var certificationFields = map[string]CertificationField{
	"name":   CertificationName,
	"issuer": CertificationIssuer,
	"number": CertificationNumber,
	"year":   CertificationYear,
}

var awardFields = map[string]AwardField{
	"name":   AwardName,
	"issuer": AwardIssuer,
	"year":   AwardYear,
}

// ParseFieldPath converts a wire-style field address ("objective",
// "personalInfo.email", "skills.hardSkills") into a typed intent carrying value.
// Nested paths have exactly two segments.
func ParseFieldPath(path, value string) (Intent, error) {
	segments := strings.Split(path, ".")
	switch len(segments) {
	case 1:
		switch path {
		case "objective":
			return SetObjective{HTML: value}, nil
		case "fileName":
			return nil, &PathError{Path: path, Message: "file name is fixed at creation"}
		}
		return nil, &PathError{Path: path, Message: "unknown top-level field"}

	case 2:
		section, field := segments[0], segments[1]
		switch section {
		case "personalInfo":
			if f, ok := personalInfoFields[field]; ok {
				return SetPersonalInfo{Field: f, Value: value}, nil
			}
		case "skills":
			if f, ok := skillsFields[field]; ok {
				return SetSkills{Field: f, Value: value}, nil
			}
		default:
			return nil, &PathError{Path: path, Message: "unknown section"}
		}
		return nil, &PathError{Path: path, Message: "unknown field"}
	}

	return nil, &PathError{Path: path, Message: "expected one or two segments"}
}

// ParseListName accepts the wire list names and a few short aliases.
func ParseListName(name string) (ListName, error) {
	switch name {
	case "educationHistory", "education":
		return ListEducation, nil
	case "workExperience", "work", "experience":
		return ListWork, nil
	case "certifications", "certification":
		return ListCertifications, nil
	case "awards", "award":
		return ListAwards, nil
	}
	return 0, &PathError{Path: name, Message: "unknown list"}
}

// ParseSubRecordField converts a sub-record field address into a typed intent.
// Boolean fields accept anything strconv.ParseBool accepts.
func ParseSubRecordField(list ListName, index int, field, value string) (Intent, error) {
	path := fmt.Sprintf("%s[%d].%s", list, index, field)

	if field == "description" {
		if list != ListEducation && list != ListWork {
			return nil, &PathError{Path: path, Message: "list has no description"}
		}
		return SetDescription{List: list, Index: index, HTML: value}, nil
	}

	switch list {
	case ListEducation:
		if field == "currentlyStudying" {
			b, err := strconv.ParseBool(value)
			if err != nil {
				return nil, &PathError{Path: path, Message: "expected a boolean"}
			}
			return SetCurrentlyStudying{Index: index, Value: b}, nil
		}
		if f, ok := educationFields[field]; ok {
			return SetEducationField{Index: index, Field: f, Value: value}, nil
		}
	case ListWork:
		if field == "currentlyWorking" {
			b, err := strconv.ParseBool(value)
			if err != nil {
				return nil, &PathError{Path: path, Message: "expected a boolean"}
			}
			return SetCurrentlyWorking{Index: index, Value: b}, nil
		}
		if f, ok := workFields[field]; ok {
			return SetWorkField{Index: index, Field: f, Value: value}, nil
		}
	case ListCertifications:
		if f, ok := certificationFields[field]; ok {
			return SetCertificationField{Index: index, Field: f, Value: value}, nil
		}
	case ListAwards:
		if f, ok := awardFields[field]; ok {
			return SetAwardField{Index: index, Field: f, Value: value}, nil
		}
	}

	return nil, &PathError{Path: path, Message: "unknown field"}
}
