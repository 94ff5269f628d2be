package tests

import (
	"bytes"
	"encoding/json"
	"io/fs"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"

	. "github.com/trezcool/juku/apps/api/echo"
	"github.com/trezcool/juku/core"
	"github.com/trezcool/juku/core/school"
	"github.com/trezcool/juku/core/student"
	"github.com/trezcool/juku/core/user"
	emailsvc "github.com/trezcool/juku/services/email"
	inmemrepos "github.com/trezcool/juku/storage/database/inmem"
	testutil "github.com/trezcool/juku/tests"

	appfs "github.com/trezcool/juku/fs"
)

var errMissingToken = httpErr{Error: "missing or malformed jwt"}

type app struct {
	server Server

	store    *inmemrepos.Store
	usrRepo  user.Repository
	stdRepo  student.Repository
	schRepo  school.Repository
	noteRepo student.NoteRepository

	studentSvc *student.Service
}

func setup(t *testing.T) *app {
	t.Helper()

	core.Conf.TestMode = true
	core.SetTemplatesFS(appfs.FS)
	if assets, err := fs.Sub(appfs.FS, "assets"); err == nil {
		user.SetAssetsFS(assets)
	}
	emailsvc.ClearSentMessages()

	store := inmemrepos.NewStore()
	db := inmemrepos.NewDB()
	usrRepo := inmemrepos.NewUserRepository(store)
	stdRepo := inmemrepos.NewStudentRepository(store)
	schRepo := inmemrepos.NewSchoolRepository(store)
	noteRepo := inmemrepos.NewNoteRepository(store)
	catRepo := inmemrepos.NewCatalogRepository(store)
	logger := testutil.NewLogger(t)

	studentSvc := student.NewService(db, stdRepo, catRepo, usrRepo, logger)

	server := NewServer(&Options{
		DisableReqLogs: true,
		Logger:         logger,
		UserSvc:        user.NewService(db, usrRepo, catRepo, emailsvc.NewConsoleService(), logger),
		StudentSvc:     studentSvc,
		NoteSvc:        student.NewNoteService(noteRepo, stdRepo),
		SchoolSvc:      school.NewService(schRepo),
		CatalogRepo:    catRepo,
	})

	return &app{
		server:     server,
		store:      store,
		usrRepo:    usrRepo,
		stdRepo:    stdRepo,
		schRepo:    schRepo,
		noteRepo:   noteRepo,
		studentSvc: studentSvc,
	}
}

func (a *app) subjectID(t *testing.T, name string) string {
	t.Helper()
	id := a.store.SubjectIDByName(name)
	if id == "" {
		t.Fatalf("subject %s not seeded", name)
	}
	return id
}

func (a *app) dayID(t *testing.T, name string) string {
	t.Helper()
	id := a.store.DayIDByName(name)
	if id == "" {
		t.Fatalf("day %s not seeded", name)
	}
	return id
}

type httpErr struct {
	Error string `json:"error"`
}

// fieldErrs mirrors the error payload shape: {errors: [{code, field?, message}]}
type fieldErrs struct {
	Errors []core.FieldError `json:"errors"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
	extra    interface{}
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

func getToken(t *testing.T, usr user.User) string {
	t.Helper()
	token, err := GenerateToken(GetUserClaims(usr))
	if err != nil {
		t.Fatalf("getToken() failed: %v", err)
	}
	return token
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	t.Helper()
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj() failed: %v", err)
	}
	return data
}

func marchallList(t *testing.T, objs ...interface{}) []byte {
	t.Helper()
	data, err := json.Marshal(objs)
	if err != nil {
		t.Fatalf("marchallList() failed: %v", err)
	}
	return data
}

func jsonBytesEqual(t *testing.T, b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	if reflect.DeepEqual(j1, j2) {
		return true, nil
	}
	if j1 == nil || j2 == nil {
		return false, nil
	}
	return assert.ObjectsAreEqual(j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	t.Helper()
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	if tt.wantData == nil {
		return
	}
	ok, err := jsonBytesEqual(t, rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}

// errCode pulls the first error code out of an error payload body.
func errCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var payload fieldErrs
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("unmarshalling error payload: %v (body: %s)", err, rec.Body.String())
	}
	if len(payload.Errors) == 0 {
		t.Fatalf("error payload carries no errors: %s", rec.Body.String())
	}
	return payload.Errors[0].Code
}
