package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/one-numan/project-managment-saas/db"
	"github.com/one-numan/project-managment-saas/internal/auth"
	"github.com/one-numan/project-managment-saas/internal/models"
	"github.com/one-numan/project-managment-saas/internal/router"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)

	os.Setenv("JWT_SECRET", "handlers-test-secret")
	if err := auth.InitJWTSecret(); err != nil {
		panic(err)
	}

	os.Exit(m.Run())
}

func testDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "tracker.db")

	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, gdb.Exec("PRAGMA foreign_keys = ON").Error)
	require.NoError(t, db.Migrate(gdb))

	return gdb
}

func createUser(t *testing.T, gdb *gorm.DB, name, password string, role models.Role) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)

	user := models.User{
		Name:         name,
		Email:        name + "@example.com",
		PasswordHash: string(hash),
		Role:         role,
	}
	require.NoError(t, gdb.Create(&user).Error)

	return &user
}

func createProject(t *testing.T, gdb *gorm.DB, name string, managerID, leadID uint) *models.Project {
	t.Helper()

	project := models.Project{Name: name, CreatedBy: managerID, ProjectOwner: leadID}
	require.NoError(t, gdb.Create(&project).Error)

	return &project
}

func createRequirement(t *testing.T, gdb *gorm.DB, projectID, managerID uint) *models.Requirement {
	t.Helper()

	requirement := models.Requirement{Requirement: "requirement", ProjectID: projectID, CreatedBy: managerID}
	require.NoError(t, gdb.Create(&requirement).Error)

	return &requirement
}

func createTask(t *testing.T, gdb *gorm.DB, projectID, requirementID, leadID uint, assignee *uint) *models.Task {
	t.Helper()

	task := models.Task{
		Task:          "task",
		ProjectID:     projectID,
		RequirementID: requirementID,
		CreatedBy:     leadID,
		AssignedTo:    assignee,
		Status:        models.StatusNotStarted,
	}
	require.NoError(t, gdb.Create(&task).Error)

	return &task
}

func sessionCookie(t *testing.T, user *models.User) *http.Cookie {
	t.Helper()

	token, err := auth.GenerateJWT(*user)
	require.NoError(t, err)

	return &http.Cookie{Name: "token", Value: token}
}

func doRequest(r *gin.Engine, method, path string, form url.Values, cookie *http.Cookie) *httptest.ResponseRecorder {
	var req *http.Request

	if form != nil {
		req = httptest.NewRequest(method, path, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	if cookie != nil {
		req.AddCookie(cookie)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	return w
}

func TestLogin(t *testing.T) {
	gdb := testDB(t)
	r := router.NewRouter(gdb)

	createUser(t, gdb, "manager", "secret-pass", models.RoleProjectManager)

	t.Run("valid credentials set session and redirect", func(t *testing.T) {
		form := url.Values{"email": {"manager@example.com"}, "password": {"secret-pass"}}
		w := doRequest(r, http.MethodPost, "/login", form, nil)

		assert.Equal(t, http.StatusSeeOther, w.Code)
		assert.Equal(t, "/dashboard", w.Header().Get("Location"))
		assert.Contains(t, w.Header().Get("Set-Cookie"), "token=")
	})

	t.Run("wrong password re-surfaces as inline error", func(t *testing.T) {
		form := url.Values{"email": {"manager@example.com"}, "password": {"wrong-pass"}}
		w := doRequest(r, http.MethodPost, "/login", form, nil)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "Invalid email or password")
	})

	t.Run("unknown email looks the same as wrong password", func(t *testing.T) {
		form := url.Values{"email": {"nobody@example.com"}, "password": {"secret-pass"}}
		w := doRequest(r, http.MethodPost, "/login", form, nil)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "Invalid email or password")
	})
}

func TestAuthRedirects(t *testing.T) {
	gdb := testDB(t)
	r := router.NewRouter(gdb)

	developer := createUser(t, gdb, "dev", "pass", models.RoleDeveloper)
	lead := createUser(t, gdb, "lead", "pass", models.RoleLead)

	t.Run("no session redirects to login", func(t *testing.T) {
		w := doRequest(r, http.MethodGet, "/project-manager/dashboard", nil, nil)

		assert.Equal(t, http.StatusSeeOther, w.Code)
		assert.Equal(t, "/login", w.Header().Get("Location"))
	})

	t.Run("wrong role redirects to generic dashboard", func(t *testing.T) {
		w := doRequest(r, http.MethodGet, "/project-manager/dashboard", nil, sessionCookie(t, developer))

		assert.Equal(t, http.StatusSeeOther, w.Code)
		assert.Equal(t, "/dashboard", w.Header().Get("Location"))
	})

	t.Run("generic dashboard routes by role", func(t *testing.T) {
		w := doRequest(r, http.MethodGet, "/dashboard", nil, sessionCookie(t, lead))

		assert.Equal(t, http.StatusSeeOther, w.Code)
		assert.Equal(t, "/lead-manager/dashboard", w.Header().Get("Location"))
	})
}

func TestManagerProjectDetail_NotOwnedIsNotFound(t *testing.T) {
	gdb := testDB(t)
	r := router.NewRouter(gdb)

	manager := createUser(t, gdb, "manager", "pass", models.RoleProjectManager)
	other := createUser(t, gdb, "other", "pass", models.RoleProjectManager)
	lead := createUser(t, gdb, "lead", "pass", models.RoleLead)

	foreign := createProject(t, gdb, "foreign", other.ID, lead.ID)

	cookie := sessionCookie(t, manager)

	foreignPath := "/project-manager/projects/" + strconv.FormatUint(uint64(foreign.ID), 10)
	wForeign := doRequest(r, http.MethodGet, foreignPath, nil, cookie)
	wMissing := doRequest(r, http.MethodGet, "/project-manager/projects/9999", nil, cookie)

	assert.Equal(t, http.StatusNotFound, wForeign.Code)
	assert.Equal(t, http.StatusNotFound, wMissing.Code)
	assert.Equal(t, wMissing.Body.String(), wForeign.Body.String())
}

func TestCreateProject_OwnerMustBeLead(t *testing.T) {
	gdb := testDB(t)
	r := router.NewRouter(gdb)

	manager := createUser(t, gdb, "manager", "pass", models.RoleProjectManager)
	lead := createUser(t, gdb, "lead", "pass", models.RoleLead)
	developer := createUser(t, gdb, "dev", "pass", models.RoleDeveloper)

	cookie := sessionCookie(t, manager)

	t.Run("developer as owner rejected", func(t *testing.T) {
		form := url.Values{"name": {"bad"}, "lead_id": {strconv.FormatUint(uint64(developer.ID), 10)}}
		w := doRequest(r, http.MethodPost, "/project-manager/projects/create", form, cookie)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("lead as owner accepted", func(t *testing.T) {
		form := url.Values{"name": {"good"}, "lead_id": {strconv.FormatUint(uint64(lead.ID), 10)}}
		w := doRequest(r, http.MethodPost, "/project-manager/projects/create", form, cookie)

		assert.Equal(t, http.StatusSeeOther, w.Code)

		var count int64
		require.NoError(t, gdb.Model(&models.Project{}).Where("name = ?", "good").Count(&count).Error)
		assert.Equal(t, int64(1), count)
	})
}

func TestCreateTask_Validation(t *testing.T) {
	gdb := testDB(t)
	r := router.NewRouter(gdb)

	manager := createUser(t, gdb, "manager", "pass", models.RoleProjectManager)
	lead := createUser(t, gdb, "lead", "pass", models.RoleLead)
	otherLead := createUser(t, gdb, "other-lead", "pass", models.RoleLead)
	developer := createUser(t, gdb, "dev", "pass", models.RoleDeveloper)

	project := createProject(t, gdb, "project", manager.ID, lead.ID)
	otherProject := createProject(t, gdb, "other", manager.ID, lead.ID)

	requirement := createRequirement(t, gdb, project.ID, manager.ID)
	strayRequirement := createRequirement(t, gdb, otherProject.ID, manager.ID)

	cookie := sessionCookie(t, lead)
	path := "/lead-manager/projects/" + strconv.FormatUint(uint64(project.ID), 10) + "/tasks/create"

	t.Run("assignee must hold the developer role", func(t *testing.T) {
		form := url.Values{
			"task":           {"do work"},
			"requirement_id": {strconv.FormatUint(uint64(requirement.ID), 10)},
			"developer_id":   {strconv.FormatUint(uint64(otherLead.ID), 10)},
		}
		w := doRequest(r, http.MethodPost, path, form, cookie)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "developer")
	})

	t.Run("requirement must belong to the project", func(t *testing.T) {
		form := url.Values{
			"task":           {"do work"},
			"requirement_id": {strconv.FormatUint(uint64(strayRequirement.ID), 10)},
			"developer_id":   {strconv.FormatUint(uint64(developer.ID), 10)},
		}
		w := doRequest(r, http.MethodPost, path, form, cookie)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("valid task created with schedule", func(t *testing.T) {
		form := url.Values{
			"task":           {"do work"},
			"requirement_id": {strconv.FormatUint(uint64(requirement.ID), 10)},
			"developer_id":   {strconv.FormatUint(uint64(developer.ID), 10)},
			"start_time":     {"2025-03-03T09:00"},
		}
		w := doRequest(r, http.MethodPost, path, form, cookie)

		assert.Equal(t, http.StatusSeeOther, w.Code)

		var task models.Task
		require.NoError(t, gdb.Where("task = ?", "do work").First(&task).Error)
		assert.Equal(t, models.StatusNotStarted, task.Status)
		require.NotNil(t, task.AssignedTo)
		assert.Equal(t, developer.ID, *task.AssignedTo)
		require.NotNil(t, task.StartTime)
	})

	t.Run("bad start time rejected", func(t *testing.T) {
		form := url.Values{
			"task":           {"bad time"},
			"requirement_id": {strconv.FormatUint(uint64(requirement.ID), 10)},
			"developer_id":   {strconv.FormatUint(uint64(developer.ID), 10)},
			"start_time":     {"not-a-time"},
		}
		w := doRequest(r, http.MethodPost, path, form, cookie)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("project owned by another lead is not found", func(t *testing.T) {
		foreign := createProject(t, gdb, "foreign", manager.ID, otherLead.ID)
		foreignPath := "/lead-manager/projects/" + strconv.FormatUint(uint64(foreign.ID), 10) + "/tasks/create"

		form := url.Values{
			"task":           {"no access"},
			"requirement_id": {strconv.FormatUint(uint64(requirement.ID), 10)},
			"developer_id":   {strconv.FormatUint(uint64(developer.ID), 10)},
		}
		w := doRequest(r, http.MethodPost, foreignPath, form, cookie)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestDeveloperStatusUpdate(t *testing.T) {
	gdb := testDB(t)
	r := router.NewRouter(gdb)

	manager := createUser(t, gdb, "manager", "pass", models.RoleProjectManager)
	lead := createUser(t, gdb, "lead", "pass", models.RoleLead)
	developer := createUser(t, gdb, "dev", "pass", models.RoleDeveloper)
	otherDev := createUser(t, gdb, "other-dev", "pass", models.RoleDeveloper)

	project := createProject(t, gdb, "project", manager.ID, lead.ID)
	requirement := createRequirement(t, gdb, project.ID, manager.ID)

	mine := createTask(t, gdb, project.ID, requirement.ID, lead.ID, &developer.ID)
	theirs := createTask(t, gdb, project.ID, requirement.ID, lead.ID, &otherDev.ID)

	cookie := sessionCookie(t, developer)

	t.Run("own task status updates", func(t *testing.T) {
		path := "/developer/tasks/" + strconv.FormatUint(uint64(mine.ID), 10) + "/update"
		w := doRequest(r, http.MethodPost, path, url.Values{"status": {"COMPLETED"}}, cookie)

		assert.Equal(t, http.StatusSeeOther, w.Code)
		assert.Equal(t, "/developer/dashboard", w.Header().Get("Location"))

		var task models.Task
		require.NoError(t, gdb.First(&task, mine.ID).Error)
		assert.Equal(t, models.StatusCompleted, task.Status)
	})

	t.Run("someone else's task is not found", func(t *testing.T) {
		path := "/developer/tasks/" + strconv.FormatUint(uint64(theirs.ID), 10) + "/update"
		w := doRequest(r, http.MethodPost, path, url.Values{"status": {"COMPLETED"}}, cookie)

		assert.Equal(t, http.StatusNotFound, w.Code)

		var task models.Task
		require.NoError(t, gdb.First(&task, theirs.ID).Error)
		assert.Equal(t, models.StatusNotStarted, task.Status)
	})

	t.Run("unknown status name is a client error", func(t *testing.T) {
		path := "/developer/tasks/" + strconv.FormatUint(uint64(mine.ID), 10) + "/update"
		w := doRequest(r, http.MethodPost, path, url.Values{"status": {"DONEISH"}}, cookie)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestLeadTaskListing_Paginated(t *testing.T) {
	gdb := testDB(t)
	r := router.NewRouter(gdb)

	manager := createUser(t, gdb, "manager", "pass", models.RoleProjectManager)
	lead := createUser(t, gdb, "lead", "pass", models.RoleLead)

	project := createProject(t, gdb, "project", manager.ID, lead.ID)
	requirement := createRequirement(t, gdb, project.ID, manager.ID)

	for i := 0; i < 7; i++ {
		createTask(t, gdb, project.ID, requirement.ID, lead.ID, nil)
	}

	cookie := sessionCookie(t, lead)

	w := doRequest(r, http.MethodGet, "/lead-manager/tasks?page=2", nil, cookie)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"total_pages":2`)
	assert.Contains(t, w.Body.String(), `"total_tasks":7`)
}

func TestLeadTaskListing_RequiresRole(t *testing.T) {
	gdb := testDB(t)
	r := router.NewRouter(gdb)

	developer := createUser(t, gdb, "dev", "pass", models.RoleDeveloper)

	w := doRequest(r, http.MethodGet, "/lead-manager/tasks", nil, sessionCookie(t, developer))

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/dashboard", w.Header().Get("Location"))
}

func TestLeadEditAndDeleteTask(t *testing.T) {
	gdb := testDB(t)
	r := router.NewRouter(gdb)

	manager := createUser(t, gdb, "manager", "pass", models.RoleProjectManager)
	lead := createUser(t, gdb, "lead", "pass", models.RoleLead)
	developer := createUser(t, gdb, "dev", "pass", models.RoleDeveloper)

	project := createProject(t, gdb, "project", manager.ID, lead.ID)
	requirement := createRequirement(t, gdb, project.ID, manager.ID)
	task := createTask(t, gdb, project.ID, requirement.ID, lead.ID, &developer.ID)

	cookie := sessionCookie(t, lead)
	editPath := "/lead-manager/tasks/" + strconv.FormatUint(uint64(task.ID), 10) + "/edit"

	form := url.Values{
		"task_name":    {"renamed"},
		"developer_id": {strconv.FormatUint(uint64(developer.ID), 10)},
		"status":       {"IN_PROGRESS"},
	}
	w := doRequest(r, http.MethodPost, editPath, form, cookie)

	assert.Equal(t, http.StatusSeeOther, w.Code)

	var updated models.Task
	require.NoError(t, gdb.First(&updated, task.ID).Error)
	assert.Equal(t, "renamed", updated.Task)
	assert.Equal(t, models.StatusInProgress, updated.Status)

	deletePath := "/lead-manager/tasks/" + strconv.FormatUint(uint64(task.ID), 10) + "/delete"
	w = doRequest(r, http.MethodPost, deletePath, nil, cookie)

	assert.Equal(t, http.StatusSeeOther, w.Code)

	var count int64
	require.NoError(t, gdb.Model(&models.Task{}).Where("id = ?", task.ID).Count(&count).Error)
	assert.Zero(t, count)
}
