package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jonathan/cv-editor/internal/collection"
	"github.com/jonathan/cv-editor/internal/config"
	"github.com/jonathan/cv-editor/internal/editor"
	"github.com/jonathan/cv-editor/internal/export"
	"github.com/jonathan/cv-editor/internal/store"
	"github.com/jonathan/cv-editor/internal/suggest"
	"github.com/jonathan/cv-editor/internal/types"
	"github.com/jonathan/cv-editor/internal/workspace"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCutWord(t *testing.T) {
	tests := []struct {
		in, word, rest string
	}{
		{"", "", ""},
		{"show", "show", ""},
		{"  set objective <p>a  b</p>", "set", "objective <p>a  b</p>"},
		{"field\teducation 0", "field", "education 0"},
	}
	for _, tt := range tests {
		word, rest := cutWord(tt.in)
		assert.Equal(t, tt.word, word, tt.in)
		assert.Equal(t, tt.rest, rest, tt.in)
	}
}

func TestParseIntent(t *testing.T) {
	tests := []struct {
		name    string
		cmd     string
		rest    string
		want    editor.Intent
		wantErr bool
	}{
		{name: "objective keeps spaces", cmd: "set", rest: "objective <p>Hello  world</p>", want: editor.SetObjective{HTML: "<p>Hello  world</p>"}},
		{name: "personal info", cmd: "set", rest: "personalInfo.email budi@example.com", want: editor.SetPersonalInfo{Field: editor.PersonalEmail, Value: "budi@example.com"}},
		{name: "clear a field", cmd: "set", rest: "skills.softSkills", want: editor.SetSkills{Field: editor.SkillsSoft, Value: ""}},
		{name: "add", cmd: "add", rest: "work", want: editor.AddSubRecord{List: editor.ListWork}},
		{name: "remove", cmd: "remove", rest: "awards 2", want: editor.RemoveSubRecord{List: editor.ListAwards, Index: 2}},
		{name: "field", cmd: "field", rest: "education 0 program Computer Science", want: editor.SetEducationField{Index: 0, Field: editor.EducationProgram, Value: "Computer Science"}},
		{name: "flag", cmd: "field", rest: "work 1 currentlyWorking true", want: editor.SetCurrentlyWorking{Index: 1, Value: true}},
		{name: "toggle", cmd: "toggle", rest: "skills", want: editor.ToggleSection{Section: editor.SectionSkills}},
		{name: "set without path", cmd: "set", rest: "", wantErr: true},
		{name: "file name is fixed", cmd: "set", rest: "fileName x", wantErr: true},
		{name: "unknown list", cmd: "add", rest: "hobbies", wantErr: true},
		{name: "bad index", cmd: "remove", rest: "awards x", wantErr: true},
		{name: "unknown section", cmd: "toggle", rest: "hobbies", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseIntent(tt.cmd, tt.rest)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveConfig_FlagsWinOverEnv(t *testing.T) {
	t.Setenv(config.EnvAPIURL, "http://env.example.com")
	t.Setenv(config.EnvOutputDir, "/tmp/env-out")
	t.Setenv(config.EnvLogMode, "")
	t.Setenv(config.EnvRedisURL, "")
	flagAPIURL = "http://flag.example.com"
	t.Cleanup(func() { flagAPIURL = "" })

	cfg, err := resolveConfig()
	require.NoError(t, err)
	assert.Equal(t, "http://flag.example.com", cfg.APIURL)
	assert.Equal(t, "/tmp/env-out", cfg.OutputDir)
	assert.Equal(t, "dev", cfg.LogMode)
}

func TestResolveConfig_InvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"log_mode":"loud"}`), 0644))
	t.Setenv(config.EnvLogMode, "")
	flagConfigPath = path
	t.Cleanup(func() { flagConfigPath = "" })

	_, err := resolveConfig()
	assert.Error(t, err)
}

// fakeService is a minimal CV service recording what the editor sends.
type fakeService struct {
	mu        sync.Mutex
	updates   []types.CV
	generated []types.CV
	lists     int
}

func (f *fakeService) handler(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/get_cv/abc123":
			_, _ = w.Write([]byte(`{"cv":{"id":"abc123","fileName":"CV Backend","personalInfo":{},"skills":{}}}`))
		case "/update_cv":
			var body struct {
				Data types.CV `json:"data"`
			}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			f.mu.Lock()
			f.updates = append(f.updates, body.Data)
			f.mu.Unlock()
			_, _ = w.Write([]byte(`{"message":"ok"}`))
		case "/get_cvs":
			f.mu.Lock()
			f.lists++
			var doc types.CV
			if len(f.updates) > 0 {
				doc = f.updates[len(f.updates)-1]
			} else {
				doc = types.NewCV("abc123", "CV Backend")
			}
			f.mu.Unlock()
			require.NoError(t, json.NewEncoder(w).Encode(map[string][]types.CV{"cvs": {doc}}))
		case "/positions":
			_, _ = w.Write([]byte(`{"positions":["Backend Engineer"]}`))
		case "/position_phrases":
			_, _ = w.Write([]byte(`{"phrases":["Built APIs.","Led migrations."]}`))
		case "/generate_cv":
			var body struct {
				CVData types.CV `json:"cvData"`
			}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			f.mu.Lock()
			f.generated = append(f.generated, body.CVData)
			f.mu.Unlock()
			_, _ = w.Write([]byte(`{"path":"/files/abc123.pdf"}`))
		case "/files/abc123.pdf":
			_, _ = w.Write([]byte("%PDF-1.4"))
		default:
			http.NotFound(w, r)
		}
	}
}

func runScript(t *testing.T, script string) (*fakeService, string, string) {
	t.Helper()
	ctx := context.Background()
	svc := &fakeService{}
	server := httptest.NewServer(svc.handler(t))
	t.Cleanup(server.Close)

	client, err := store.New(store.Options{BaseURL: server.URL})
	require.NoError(t, err)
	catalog, err := suggest.NewCatalog(client)
	require.NoError(t, err)

	deps := workspace.Deps{Store: client, Catalog: catalog, EditDelay: time.Hour}
	view := collection.NewView(client, "user-1", nil)
	watchSaves(&deps, view)
	ws, err := workspace.Open(ctx, deps, "abc123")
	require.NoError(t, err)

	dir := t.TempDir()
	var out bytes.Buffer
	r := newREPL(ws, strings.NewReader(script), &out)
	r.collection = view
	r.exporter = export.New(export.Options{Service: client, Confirmer: r.confirmer(false), OutputDir: dir})

	require.NoError(t, r.run(ctx))
	require.NoError(t, ws.Close(ctx))
	return svc, out.String(), dir
}

func TestREPL_EditAndSubmit(t *testing.T) {
	script := strings.Join([]string{
		"help",
		"set personalInfo.namaLengkap Budi Santoso",
		"set personalInfo.email budi@example.com",
		"add education",
		"field education 0 institution Institut Teknologi Bandung",
		"field education 0 currentlyStudying true",
		"toggle education",
		"role Backend Engineer",
		"phrase 1",
		"bogus",
		"submit",
		"y",
		"set objective never sent",
	}, "\n")

	svc, out, dir := runScript(t, script)

	assert.Contains(t, out, "Commands:")
	assert.Contains(t, out, "[-] Education")
	assert.Contains(t, out, "added: Built APIs.")
	assert.Contains(t, out, `unknown command "bogus"`)
	assert.Contains(t, out, "Is this CV correct? [y/N]: ")

	require.Len(t, svc.updates, 1)
	require.Len(t, svc.generated, 1)
	sent := svc.generated[0]
	assert.Equal(t, "Budi Santoso", sent.PersonalInfo.NamaLengkap)
	assert.Equal(t, "Built APIs.", sent.Objective)
	require.Len(t, sent.EducationHistory, 1)
	assert.Equal(t, "Institut Teknologi Bandung", sent.EducationHistory[0].Institution)
	assert.True(t, sent.EducationHistory[0].CurrentlyStudying)

	data, err := os.ReadFile(filepath.Join(dir, "CV Backend.pdf"))
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4", string(data))
}

func TestREPL_SubmitRequiresNameAndEmail(t *testing.T) {
	svc, out, _ := runScript(t, "set objective hello\nsubmit\nstatus\nquit\n")

	assert.Contains(t, out, "required fields are empty: namaLengkap, email")
	assert.NotContains(t, out, "Is this CV correct?")
	assert.Contains(t, out, "unsaved changes")
	assert.Contains(t, out, "Last saved: never")
	assert.Empty(t, svc.generated)

	// written by quit, not by the rejected submit
	require.Len(t, svc.updates, 1)
	assert.Equal(t, "hello", svc.updates[0].Objective)
}

func TestREPL_DeclinedSubmitKeepsEditing(t *testing.T) {
	script := "set personalInfo.namaLengkap Budi\nset personalInfo.email b@x.id\nsubmit\nn\nstatus\nset skills.hardSkills Go\nquit\n"
	svc, out, _ := runScript(t, script)

	assert.Contains(t, out, "submission declined")
	assert.Contains(t, out, "unsaved changes")
	assert.Empty(t, svc.generated)
	require.Len(t, svc.updates, 1)
	assert.Equal(t, "Budi", svc.updates[0].PersonalInfo.NamaLengkap)
	assert.Equal(t, "Go", svc.updates[0].Skills.HardSkills)
}

func TestREPL_ListRefreshesAfterSave(t *testing.T) {
	script := "list\nlist\nset personalInfo.namaLengkap Budi Santoso\nsave\nlist\nquit\n"
	svc, out, _ := runScript(t, script)

	assert.Equal(t, 2, svc.lists)
	assert.Contains(t, out, "No name")
	assert.Contains(t, out, "Budi Santoso")
}

func TestREPL_EndOfInputSavesPendingEdits(t *testing.T) {
	svc, _, _ := runScript(t, "set skills.softSkills Teamwork")

	require.Len(t, svc.updates, 1)
	assert.Equal(t, "Teamwork", svc.updates[0].Skills.SoftSkills)
}
