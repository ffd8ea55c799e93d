package editor

import (
	"errors"
	"fmt"

	"github.com/jonathan/cv-editor/internal/types"
)

// ErrFieldDisabled is returned when editing an end date of an entry that is
// marked as ongoing.
var ErrFieldDisabled = errors.New("field is disabled while entry is ongoing")

// IntentError reports an intent that cannot be applied to the current state.
// It always indicates a caller bug: the state is left unchanged.
type IntentError struct {
	Intent  Intent
	Message string
	Cause   error
}

func (e *IntentError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("invalid intent %T: %s: %v", e.Intent, e.Message, e.Cause)
	}
	return fmt.Sprintf("invalid intent %T: %s", e.Intent, e.Message)
}

func (e *IntentError) Unwrap() error {
	return e.Cause
}

// State is what the editor holds for an open document.
type State struct {
	Document types.CV
	Sections Sections
}

// NewState opens doc with the default section layout.
func NewState(doc types.CV) State {
	doc.Normalize()
	return State{Document: doc, Sections: DefaultSections()}
}

// Apply returns the state that results from applying in to s. The input state is
// never modified: every touched list is copied, untouched lists are shared.
func Apply(s State, in Intent) (State, error) {
	next := s
	doc := &next.Document

	switch in := in.(type) {
	case SetPersonalInfo:
		if err := setPersonalInfo(&doc.PersonalInfo, in.Field, in.Value); err != nil {
			return s, &IntentError{Intent: in, Message: err.Error()}
		}

	case SetSkills:
		if err := setSkills(&doc.Skills, in.Field, in.Value); err != nil {
			return s, &IntentError{Intent: in, Message: err.Error()}
		}

	case SetObjective:
		doc.Objective = in.HTML

	case SetDescription:
		switch in.List {
		case ListEducation:
			list, err := updateAt(doc.EducationHistory, in.Index, func(e *types.Education) error {
				e.Description = in.HTML
				return nil
			})
			if err != nil {
				return s, &IntentError{Intent: in, Message: "cannot set description", Cause: err}
			}
			doc.EducationHistory = list
		case ListWork:
			list, err := updateAt(doc.WorkExperience, in.Index, func(w *types.WorkExperience) error {
				w.Description = in.HTML
				return nil
			})
			if err != nil {
				return s, &IntentError{Intent: in, Message: "cannot set description", Cause: err}
			}
			doc.WorkExperience = list
		default:
			return s, &IntentError{Intent: in, Message: fmt.Sprintf("list %s has no description", in.List)}
		}

	case AddSubRecord:
		switch in.List {
		case ListEducation:
			doc.EducationHistory = appendCopy(doc.EducationHistory, types.Education{})
		case ListWork:
			doc.WorkExperience = appendCopy(doc.WorkExperience, types.WorkExperience{})
		case ListCertifications:
			doc.Certifications = appendCopy(doc.Certifications, types.Certification{})
		case ListAwards:
			doc.Awards = appendCopy(doc.Awards, types.Award{})
		default:
			return s, &IntentError{Intent: in, Message: "unknown list"}
		}

	case RemoveSubRecord:
		var err error
		switch in.List {
		case ListEducation:
			doc.EducationHistory, err = removeAt(doc.EducationHistory, in.Index)
		case ListWork:
			doc.WorkExperience, err = removeAt(doc.WorkExperience, in.Index)
		case ListCertifications:
			doc.Certifications, err = removeAt(doc.Certifications, in.Index)
		case ListAwards:
			doc.Awards, err = removeAt(doc.Awards, in.Index)
		default:
			err = errors.New("unknown list")
		}
		if err != nil {
			return s, &IntentError{Intent: in, Message: "cannot remove record", Cause: err}
		}

	case SetEducationField:
		list, err := updateAt(doc.EducationHistory, in.Index, func(e *types.Education) error {
			return setEducationField(e, in.Field, in.Value)
		})
		if err != nil {
			return s, &IntentError{Intent: in, Message: "cannot set education field", Cause: err}
		}
		doc.EducationHistory = list

	case SetCurrentlyStudying:
		list, err := updateAt(doc.EducationHistory, in.Index, func(e *types.Education) error {
			e.CurrentlyStudying = in.Value
			if in.Value {
				e.EndYear = ""
			}
			return nil
		})
		if err != nil {
			return s, &IntentError{Intent: in, Message: "cannot set currently studying", Cause: err}
		}
		doc.EducationHistory = list

	case SetWorkField:
		list, err := updateAt(doc.WorkExperience, in.Index, func(w *types.WorkExperience) error {
			return setWorkField(w, in.Field, in.Value)
		})
		if err != nil {
			return s, &IntentError{Intent: in, Message: "cannot set work field", Cause: err}
		}
		doc.WorkExperience = list

	case SetCurrentlyWorking:
		list, err := updateAt(doc.WorkExperience, in.Index, func(w *types.WorkExperience) error {
			w.CurrentlyWorking = in.Value
			if in.Value {
				w.EndDate = ""
			}
			return nil
		})
		if err != nil {
			return s, &IntentError{Intent: in, Message: "cannot set currently working", Cause: err}
		}
		doc.WorkExperience = list

	case SetCertificationField:
		list, err := updateAt(doc.Certifications, in.Index, func(c *types.Certification) error {
			return setCertificationField(c, in.Field, in.Value)
		})
		if err != nil {
			return s, &IntentError{Intent: in, Message: "cannot set certification field", Cause: err}
		}
		doc.Certifications = list

	case SetAwardField:
		list, err := updateAt(doc.Awards, in.Index, func(a *types.Award) error {
			return setAwardField(a, in.Field, in.Value)
		})
		if err != nil {
			return s, &IntentError{Intent: in, Message: "cannot set award field", Cause: err}
		}
		doc.Awards = list

	case ToggleSection:
		if _, err := ParseSection(string(in.Section)); err != nil {
			return s, &IntentError{Intent: in, Message: err.Error()}
		}
		next.Sections = s.Sections.toggled(in.Section)

	case nil:
		return s, &IntentError{Intent: in, Message: "nil intent"}

	default:
		return s, &IntentError{Intent: in, Message: "unsupported intent"}
	}

	return next, nil
}

func appendCopy[T any](list []T, item T) []T {
	out := make([]T, len(list), len(list)+1)
	copy(out, list)
	return append(out, item)
}

func removeAt[T any](list []T, index int) ([]T, error) {
	if index < 0 || index >= len(list) {
		return nil, fmt.Errorf("index %d out of range [0,%d)", index, len(list))
	}
	out := make([]T, 0, len(list)-1)
	out = append(out, list[:index]...)
	return append(out, list[index+1:]...), nil
}

func updateAt[T any](list []T, index int, fn func(*T) error) ([]T, error) {
	if index < 0 || index >= len(list) {
		return nil, fmt.Errorf("index %d out of range [0,%d)", index, len(list))
	}
	out := make([]T, len(list))
	copy(out, list)
	if err := fn(&out[index]); err != nil {
		return nil, err
	}
	return out, nil
}

func setPersonalInfo(p *types.PersonalInfo, field PersonalInfoField, value string) error {
	switch field {
	case PersonalName:
		p.NamaLengkap = value
	case PersonalEmail:
		p.Email = value
	case PersonalPhone:
		p.NomorHp = value
	case PersonalLinkedin:
		p.LinkedinURL = value
	case PersonalPortfolio:
		p.PortofolioURL = value
	case PersonalAddress:
		p.Alamat = value
	default:
		return fmt.Errorf("unknown personal info field %d", field)
	}
	return nil
}

func setSkills(s *types.Skills, field SkillsField, value string) error {
	switch field {
	case SkillsHard:
		s.HardSkills = value
	case SkillsSoft:
		s.SoftSkills = value
	case SkillsSoftware:
		s.SoftwareSkills = value
	default:
		return fmt.Errorf("unknown skills field %d", field)
	}
	return nil
}

func setEducationField(e *types.Education, field EducationField, value string) error {
	switch field {
	case EducationInstitution:
		e.Institution = value
	case EducationLocation:
		e.Location = value
	case EducationStartYear:
		e.StartYear = value
	case EducationEndYear:
		if e.CurrentlyStudying {
			return ErrFieldDisabled
		}
		e.EndYear = value
	case EducationLevel:
		e.EducationLevel = value
	case EducationProgram:
		e.Program = value
	case EducationGPA:
		e.GPA = value
	case EducationMaxGPA:
		e.MaxGPA = value
	default:
		return fmt.Errorf("unknown education field %d", field)
	}
	return nil
}

func setWorkField(w *types.WorkExperience, field WorkField, value string) error {
	switch field {
	case WorkInstitution:
		w.Institution = value
	case WorkPosition:
		w.Position = value
	case WorkEmployeeStatus:
		w.EmployeeStatus = value
	case WorkStartDate:
		w.StartDate = value
	case WorkEndDate:
		if w.CurrentlyWorking {
			return ErrFieldDisabled
		}
		w.EndDate = value
	case WorkLocation:
		w.Location = value
	default:
		return fmt.Errorf("unknown work field %d", field)
	}
	return nil
}

func setCertificationField(c *types.Certification, field CertificationField, value string) error {
	switch field {
	case CertificationName:
		c.Name = value
	case CertificationIssuer:
		c.Issuer = value
	case CertificationNumber:
		c.Number = value
	case CertificationYear:
		c.Year = value
	default:
		return fmt.Errorf("unknown certification field %d", field)
	}
	return nil
}

func setAwardField(a *types.Award, field AwardField, value string) error {
	switch field {
	case AwardName:
		a.Name = value
	case AwardIssuer:
		a.Issuer = value
	case AwardYear:
		a.Year = value
	default:
		return fmt.Errorf("unknown award field %d", field)
	}
	return nil
}
