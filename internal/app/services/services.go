package services

// Services defined in this package:
// - AuthService: login, self-registration, profile and password management
// - UserService: administrator user management
// - SettingsService: system settings backed by the database and the cache
// - CatalogService: a teacher's categories and modules
// - AssessmentService: briefs, rubrics, student work and mark verification
// - MarkingService: the marking engine operations and background marking
// - WebsiteService: website sections, templates and page layouts
// - DashboardService: admin and teacher dashboards
