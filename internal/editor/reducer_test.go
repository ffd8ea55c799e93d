package editor

import (
	"fmt"
	"testing"

	"github.com/jonathan/cv-editor/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleState() State {
	doc := types.NewCV("abc123", "CV Backend")
	doc.PersonalInfo = types.PersonalInfo{NamaLengkap: "Budi Santoso", Email: "budi@example.com", NomorHp: "0812"}
	doc.Objective = "<p>Engineer</p>"
	doc.EducationHistory = []types.Education{
		{Institution: "ITB", StartYear: "2015", EndYear: "2019"},
		{Institution: "UI", StartYear: "2019", EndYear: "2021"},
	}
	doc.WorkExperience = []types.WorkExperience{
		{Institution: "Acme", Position: "Engineer", EndDate: "2023-01"},
	}
	doc.Certifications = []types.Certification{{Name: "CKA"}}
	doc.Awards = []types.Award{{Name: "Hackathon"}, {Name: "Dean's list"}}
	doc.Skills = types.Skills{HardSkills: "Go", SoftSkills: "Writing"}
	return NewState(doc)
}

func allIntents() []Intent {
	return []Intent{
		SetPersonalInfo{Field: PersonalEmail, Value: "x@y.z"},
		SetSkills{Field: SkillsSoftware, Value: "Vim"},
		SetObjective{HTML: "<p>New</p>"},
		SetDescription{List: ListWork, Index: 0, HTML: "<ul><li>Built</li></ul>"},
		AddSubRecord{List: ListEducation},
		AddSubRecord{List: ListAwards},
		RemoveSubRecord{List: ListEducation, Index: 0},
		RemoveSubRecord{List: ListAwards, Index: 1},
		SetEducationField{Index: 1, Field: EducationProgram, Value: "CS"},
		SetCurrentlyStudying{Index: 0, Value: true},
		SetWorkField{Index: 0, Field: WorkPosition, Value: "Lead"},
		SetCurrentlyWorking{Index: 0, Value: true},
		SetCertificationField{Index: 0, Field: CertificationIssuer, Value: "CNCF"},
		SetAwardField{Index: 1, Field: AwardYear, Value: "2020"},
		ToggleSection{Section: SectionSkills},
	}
}

func TestApply_DoesNotMutateInput(t *testing.T) {
	for _, in := range allIntents() {
		t.Run(fmt.Sprintf("%T", in), func(t *testing.T) {
			original := sampleState()
			snapshot := original.Document.Clone()
			sectionsBefore := map[Section]bool{}
			for k, v := range original.Sections {
				sectionsBefore[k] = v
			}

			next, err := Apply(original, in)
			require.NoError(t, err, "%T", in)

			assert.Equal(t, snapshot, original.Document, "%T mutated its input document", in)
			assert.Equal(t, Sections(sectionsBefore), original.Sections, "%T mutated its input sections", in)
			assert.NotEqual(t, original, next, "%T had no effect", in)
		})
	}
}

func TestApply_AddThenRemoveIsNoop(t *testing.T) {
	lists := []ListName{ListEducation, ListWork, ListCertifications, ListAwards}

	for _, list := range lists {
		t.Run(list.String(), func(t *testing.T) {
			start := sampleState()

			added, err := Apply(start, AddSubRecord{List: list})
			require.NoError(t, err)

			index := map[ListName]int{
				ListEducation:      len(start.Document.EducationHistory),
				ListWork:           len(start.Document.WorkExperience),
				ListCertifications: len(start.Document.Certifications),
				ListAwards:         len(start.Document.Awards),
			}[list]

			removed, err := Apply(added, RemoveSubRecord{List: list, Index: index})
			require.NoError(t, err)

			assert.Equal(t, start.Document, removed.Document)
		})
	}
}

func TestApply_AddSubRecordDefaults(t *testing.T) {
	s, err := Apply(sampleState(), AddSubRecord{List: ListWork})
	require.NoError(t, err)

	require.Len(t, s.Document.WorkExperience, 2)
	assert.Equal(t, types.WorkExperience{}, s.Document.WorkExperience[1])
	assert.Equal(t, "Acme", s.Document.WorkExperience[0].Institution)
}

func TestApply_RemoveShiftsLaterRecords(t *testing.T) {
	s, err := Apply(sampleState(), AddSubRecord{List: ListEducation})
	require.NoError(t, err)
	s, err = Apply(s, SetEducationField{Index: 2, Field: EducationInstitution, Value: "MIT"})
	require.NoError(t, err)

	s, err = Apply(s, RemoveSubRecord{List: ListEducation, Index: 0})
	require.NoError(t, err)

	require.Len(t, s.Document.EducationHistory, 2)
	assert.Equal(t, "UI", s.Document.EducationHistory[0].Institution)
	assert.Equal(t, "MIT", s.Document.EducationHistory[1].Institution)
}

func TestApply_SetPersonalInfoChangesOnlyThatLeaf(t *testing.T) {
	start := sampleState()

	next, err := Apply(start, SetPersonalInfo{Field: PersonalEmail, Value: "a@b.com"})
	require.NoError(t, err)

	assert.Equal(t, "a@b.com", next.Document.PersonalInfo.Email)
	assert.Equal(t, "Budi Santoso", next.Document.PersonalInfo.NamaLengkap)
	assert.Equal(t, "0812", next.Document.PersonalInfo.NomorHp)

	expected := start.Document.Clone()
	expected.PersonalInfo.Email = "a@b.com"
	assert.Equal(t, expected, next.Document)

	// untouched lists are shared, not copied
	assert.Same(t, &start.Document.EducationHistory[0], &next.Document.EducationHistory[0])
}

func TestApply_SetSubRecordFieldLeavesSiblings(t *testing.T) {
	start := sampleState()

	next, err := Apply(start, SetAwardField{Index: 0, Field: AwardIssuer, Value: "ACM"})
	require.NoError(t, err)

	assert.Equal(t, types.Award{Name: "Hackathon", Issuer: "ACM"}, next.Document.Awards[0])
	assert.Equal(t, start.Document.Awards[1], next.Document.Awards[1])
	assert.Equal(t, "", start.Document.Awards[0].Issuer)
}

func TestApply_CurrentlyStudyingClearsEndYear(t *testing.T) {
	s, err := Apply(sampleState(), SetCurrentlyStudying{Index: 0, Value: true})
	require.NoError(t, err)

	edu := s.Document.EducationHistory[0]
	assert.True(t, edu.CurrentlyStudying)
	assert.Empty(t, edu.EndYear)

	_, err = Apply(s, SetEducationField{Index: 0, Field: EducationEndYear, Value: "2030"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrFieldDisabled)

	s, err = Apply(s, SetCurrentlyStudying{Index: 0, Value: false})
	require.NoError(t, err)
	s, err = Apply(s, SetEducationField{Index: 0, Field: EducationEndYear, Value: "2030"})
	require.NoError(t, err)
	assert.Equal(t, "2030", s.Document.EducationHistory[0].EndYear)
}

func TestApply_CurrentlyWorkingClearsEndDate(t *testing.T) {
	s, err := Apply(sampleState(), SetCurrentlyWorking{Index: 0, Value: true})
	require.NoError(t, err)
	assert.Empty(t, s.Document.WorkExperience[0].EndDate)

	_, err = Apply(s, SetWorkField{Index: 0, Field: WorkEndDate, Value: "2024-01"})
	assert.ErrorIs(t, err, ErrFieldDisabled)
}

func TestApply_ToggleSection(t *testing.T) {
	start := sampleState()
	assert.True(t, start.Sections.Expanded(SectionBasic))
	assert.False(t, start.Sections.Expanded(SectionEducation))

	next, err := Apply(start, ToggleSection{Section: SectionEducation})
	require.NoError(t, err)

	assert.True(t, next.Sections.Expanded(SectionEducation))
	assert.False(t, start.Sections.Expanded(SectionEducation))
	assert.Equal(t, start.Document, next.Document)
	assert.False(t, ChangesDocument(ToggleSection{Section: SectionEducation}))
	assert.True(t, ChangesDocument(SetObjective{}))
}

func TestApply_InvalidIntents(t *testing.T) {
	tests := []struct {
		name   string
		intent Intent
	}{
		{"remove out of range", RemoveSubRecord{List: ListAwards, Index: 2}},
		{"remove negative", RemoveSubRecord{List: ListAwards, Index: -1}},
		{"set field out of range", SetWorkField{Index: 5, Field: WorkLocation, Value: "x"}},
		{"unknown list", AddSubRecord{List: ListName(42)}},
		{"unknown personal field", SetPersonalInfo{Field: PersonalInfoField(99)}},
		{"description on awards", SetDescription{List: ListAwards, Index: 0}},
		{"unknown section", ToggleSection{Section: "sidebar"}},
		{"nil intent", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start := sampleState()
			next, err := Apply(start, tt.intent)
			require.Error(t, err)

			var intentErr *IntentError
			assert.ErrorAs(t, err, &intentErr)
			assert.Equal(t, start, next)
		})
	}
}
