package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/frii-edu/examiner-api/internal/middleware"
	"github.com/frii-edu/examiner-api/internal/models"
	"github.com/frii-edu/examiner-api/internal/service"
)

// Handlers bundles every route handler for registration.
type Handlers struct {
	Auth                *AuthHandler
	Users               *UserHandler
	Branches            *BranchHandler
	Classes             *ClassHandler
	Subjects            *SubjectHandler
	ResponsibilityTypes *ResponsibilityTypeHandler
	Teachers            *TeacherHandler
	Assignments         *AssignmentHandler
	Leaves              *LeaveHandler
	Routines            *RoutineHandler
	Reports             *ReportHandler
	Dashboard           *DashboardHandler
}

// Register wires every route under the API prefix. Catalog writes, account
// administration, assignment mutations and leave decisions are admin only;
// teacher, leave and routine mutations accept incharge callers whose campus
// scope is enforced in the services.
func Register(r *gin.Engine, prefix string, auth *service.AuthService, metrics *service.MetricsService, h Handlers, dashboardEnabled bool) {
	api := r.Group(prefix)
	api.Use(middleware.Metrics(metrics))

	authGroup := api.Group("/auth")
	{
		authGroup.POST("/login", h.Auth.Login)
		authGroup.POST("/refresh", h.Auth.Refresh)
		authGroup.POST("/logout", middleware.JWT(auth), h.Auth.Logout)
		authGroup.GET("/me", middleware.JWT(auth), h.Auth.Me)
	}

	protected := api.Group("")
	protected.Use(middleware.JWT(auth))

	adminOnly := middleware.RequireRoles(models.RoleAdmin)
	adminOrIncharge := middleware.RequireRoles(models.RoleAdmin, models.RoleIncharge)

	users := protected.Group("/users", adminOnly)
	{
		users.GET("", h.Users.List)
		users.GET("/:id", h.Users.Get)
		users.POST("", h.Users.Create)
		users.PUT("/:id", h.Users.Update)
		users.DELETE("/:id", h.Users.Delete)
	}

	branches := protected.Group("/branches")
	{
		branches.GET("", h.Branches.List)
		branches.GET("/:id", h.Branches.Get)
		branches.POST("", adminOnly, h.Branches.Create)
		branches.PUT("/:id", adminOnly, h.Branches.Update)
		branches.DELETE("/:id", adminOnly, h.Branches.Delete)
	}

	classes := protected.Group("/classes")
	{
		classes.GET("", h.Classes.List)
		classes.GET("/:id", h.Classes.Get)
		classes.POST("", adminOnly, h.Classes.Create)
		classes.PUT("/:id", adminOnly, h.Classes.Update)
		classes.DELETE("/:id", adminOnly, h.Classes.Delete)
	}

	subjects := protected.Group("/subjects")
	{
		subjects.GET("", h.Subjects.List)
		subjects.GET("/:id", h.Subjects.Get)
		subjects.POST("", adminOnly, h.Subjects.Create)
		subjects.PUT("/:id", adminOnly, h.Subjects.Update)
		subjects.DELETE("/:id", adminOnly, h.Subjects.Delete)
	}

	types := protected.Group("/responsibility-types")
	{
		types.GET("", h.ResponsibilityTypes.List)
		types.GET("/:id", h.ResponsibilityTypes.Get)
		types.POST("", adminOnly, h.ResponsibilityTypes.Create)
		types.PUT("/:id", adminOnly, h.ResponsibilityTypes.Update)
		types.DELETE("/:id", adminOnly, h.ResponsibilityTypes.Delete)
	}

	teachers := protected.Group("/teachers")
	{
		teachers.GET("", h.Teachers.List)
		teachers.GET("/:id", h.Teachers.Get)
		teachers.GET("/:id/profile", h.Teachers.Profile)
		teachers.POST("", adminOrIncharge, h.Teachers.Create)
		teachers.PUT("/:id", adminOrIncharge, h.Teachers.Update)
		teachers.DELETE("/:id", adminOnly, h.Teachers.Delete)
		teachers.POST("/:id/reports", adminOrIncharge, h.Teachers.AddReport)
		teachers.DELETE("/:id/reports/:reportId", adminOrIncharge, h.Teachers.DeleteReport)
	}

	assignments := protected.Group("/assignments")
	{
		assignments.GET("", h.Assignments.List)
		assignments.GET("/teacher/:teacherId", h.Assignments.ListByTeacher)
		assignments.GET("/:id", h.Assignments.Get)
		assignments.POST("", adminOnly, h.Assignments.Assign)
		assignments.PUT("/:id/status", adminOnly, h.Assignments.UpdateStatus)
		assignments.DELETE("/:id", adminOnly, h.Assignments.Delete)
	}

	leaves := protected.Group("/leaves")
	{
		leaves.GET("", h.Leaves.List)
		leaves.GET("/conflict-check", h.Leaves.CheckConflict)
		leaves.GET("/export/excel", adminOrIncharge, h.Leaves.ExportExcel)
		leaves.POST("", adminOrIncharge, h.Leaves.Create)
		leaves.PUT("/:id/status", adminOnly, h.Leaves.UpdateStatus)
		leaves.DELETE("/:id", adminOnly, h.Leaves.Delete)
	}

	routines := protected.Group("/routines")
	{
		routines.GET("/filter", h.Routines.Filter)
		routines.GET("/teacher/:teacherId", h.Routines.ListByTeacher)
		routines.GET("/export/pdf", adminOrIncharge, h.Routines.ExportPDF)
		routines.POST("", adminOrIncharge, h.Routines.Add)
		routines.POST("/bulk-upload", adminOrIncharge, h.Routines.BulkUpload)
		routines.DELETE("/:id", adminOrIncharge, h.Routines.Delete)
	}

	reports := protected.Group("/reports", adminOrIncharge)
	{
		reports.GET("/data", h.Reports.Data)
		reports.GET("/export/custom-pdf", h.Reports.ExportCustomPDF)
		reports.GET("/export/yearly-pdf", h.Reports.ExportYearlyPDF)
		reports.GET("/export/excel", h.Reports.ExportExcel)
		reports.GET("/export/csv", h.Reports.ExportCSV)
		reports.GET("/archive/:token", h.Reports.Download)
	}

	if dashboardEnabled {
		dashboard := protected.Group("/dashboard", adminOrIncharge)
		{
			dashboard.GET("", h.Dashboard.Overview)
			dashboard.GET("/summary", h.Dashboard.Summary)
			dashboard.GET("/top-teachers", h.Dashboard.TopTeachers)
			dashboard.GET("/by-duty-type", h.Dashboard.ByDutyType)
			dashboard.GET("/by-branch", h.Dashboard.ByBranch)
			dashboard.GET("/recent-leaves", h.Dashboard.RecentLeaves)
		}
	}
}
