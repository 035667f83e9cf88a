package routes

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"plagiarism-check-platform/internal/config"
	"plagiarism-check-platform/internal/logger"
	"plagiarism-check-platform/internal/store"
	"plagiarism-check-platform/internal/telemetry"
	"plagiarism-check-platform/middleware"
	"plagiarism-check-platform/models"
	"plagiarism-check-platform/services"
	"plagiarism-check-platform/utils"

	"github.com/gin-gonic/gin"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

func SetupCheckRoutes(
	router *gin.Engine,
	cfg *config.Config,
	authMW *middleware.AuthMiddleware,
	roleMW *middleware.RoleMiddleware,
	checkService *services.CheckService,
	checkStore *store.CheckStore,
	exportService *services.ExportService,
	metrics *telemetry.Metrics,
) {
	api := router.Group("/api")
	api.Use(authMW.RequireAuth())

	// Request a new similarity check. The response is 202: the check is
	// accepted in Processing state and scored by the worker.
	api.POST("/checks", func(c *gin.Context) {
		var req models.CreateCheckRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.RespondWithBadRequest(c, "Invalid request data", gin.H{"error": err.Error()})
			return
		}

		userID := middleware.GetUserID(c)

		ctx, cancel := utils.WithTimeout(c.Request.Context())
		defer cancel()

		result, err := checkService.RequestCheck(ctx, userID, req.SourceDocumentID, req.Notes)
		if errors.Is(err, store.ErrNotFound) {
			utils.RespondWithNotFound(c, "Source document not found")
			return
		}
		if errors.Is(err, store.ErrQuotaExceeded) {
			if metrics != nil {
				metrics.RecordQuotaRejection()
			}
			utils.RespondWithQuotaExceeded(c, "Daily check quota exhausted",
				gin.H{"daily_check_limit": cfg.DailyCheckLimit})
			return
		}
		if err != nil {
			logger.Error("check request failed", "user_id", userID, "error", err)
			utils.RespondWithInternalError(c, "Failed to create check", nil)
			return
		}

		if metrics != nil {
			metrics.RecordCheckRequested(middleware.GetRole(c))
		}
		c.JSON(http.StatusAccepted, models.CreateCheckResponse{
			CheckID:              result.Check.ID,
			Status:               result.Check.Status,
			RemainingChecksToday: result.RemainingToday,
			DailyCheckLimit:      result.DailyCheckLimit,
		})
	})

	// Get one check. The response shape follows the check's status:
	// Processing returns the bare lifecycle fields, Failed adds notes,
	// Completed adds scores, matches and the per-segment analysis.
	api.GET("/checks/:checkID", func(c *gin.Context) {
		checkID := c.Param("checkID")
		userID := middleware.GetUserID(c)

		ctx, cancel := utils.WithTimeout(c.Request.Context())
		defer cancel()

		check, err := checkStore.GetCheck(ctx, checkID)
		if errors.Is(err, store.ErrNotFound) {
			utils.RespondWithNotFound(c, "Check not found")
			return
		}
		if err != nil {
			logger.Error("check lookup failed", "check_id", checkID, "error", err)
			utils.RespondWithInternalError(c, "Failed to load check", nil)
			return
		}

		// Students only see their own checks. Not found rather than
		// forbidden, so check ids cannot be probed.
		if check.UserID != userID && !middleware.IsAdmin(c) {
			utils.RespondWithNotFound(c, "Check not found")
			return
		}

		switch check.Status {
		case models.CheckStatusProcessing:
			c.JSON(http.StatusOK, gin.H{
				"id":         check.ID,
				"status":     check.Status,
				"created_at": check.CreatedAt,
			})

		case models.CheckStatusFailed:
			c.JSON(http.StatusOK, gin.H{
				"id":           check.ID,
				"status":       check.Status,
				"notes":        check.Notes,
				"created_at":   check.CreatedAt,
				"completed_at": check.CompletedAt,
			})

		case models.CheckStatusCompleted:
			matches, err := checkStore.ListMatches(ctx, check.ID)
			if err != nil {
				logger.Error("match listing failed", "check_id", checkID, "error", err)
				utils.RespondWithInternalError(c, "Failed to load matches", nil)
				return
			}

			var analysisDetail models.AnalysisDetail
			if err := utils.DecompressJSON(check.AnalysisDetail, &analysisDetail); err != nil {
				logger.Error("analysis blob decode failed", "check_id", checkID, "error", err)
				utils.RespondWithInternalError(c, "Failed to decode analysis detail", nil)
				return
			}
			var aiDetail models.AiDetail
			if err := utils.DecompressJSON(check.AiDetail, &aiDetail); err != nil {
				logger.Error("ai blob decode failed", "check_id", checkID, "error", err)
				utils.RespondWithInternalError(c, "Failed to decode AI detail", nil)
				return
			}

			c.JSON(http.StatusOK, completedCheckPayload(check, matches, analysisDetail, aiDetail))

		default:
			logger.Error("check in unknown state", "check_id", checkID, "status", check.Status)
			utils.RespondWithInternalError(c, "Check is in an unknown state", nil)
		}
	})

	// List the caller's own checks, newest first.
	api.GET("/checks", func(c *gin.Context) {
		userID := middleware.GetUserID(c)
		page, limit := paginationParams(c)

		ctx, cancel := utils.WithTimeout(c.Request.Context())
		defer cancel()

		checks, total, err := checkStore.ListChecksByUser(ctx, userID, page, limit)
		if err != nil {
			logger.Error("check listing failed", "user_id", userID, "error", err)
			utils.RespondWithInternalError(c, "Failed to list checks", nil)
			return
		}

		items := make([]gin.H, 0, len(checks))
		for _, check := range checks {
			item := gin.H{
				"id":         check.ID,
				"status":     check.Status,
				"created_at": check.CreatedAt,
			}
			if check.Status == models.CheckStatusCompleted {
				item["overall_similarity"] = check.OverallSimilarity
				item["total_matched_documents"] = check.TotalMatchedDocuments
				item["ai_probability"] = check.AiProbability
				item["ai_level"] = check.AiLevel
				item["completed_at"] = check.CompletedAt
			}
			if check.Status == models.CheckStatusFailed {
				item["notes"] = check.Notes
				item["completed_at"] = check.CompletedAt
			}
			items = append(items, item)
		}

		c.JSON(http.StatusOK, gin.H{
			"checks": items,
			"page":   page,
			"limit":  limit,
			"total":  total,
		})
	})

	admin := router.Group("/api/admin")
	admin.Use(authMW.RequireAuth(), roleMW.AdminGuard())

	// Remove a check and its match rows.
	admin.DELETE("/checks/:checkID", func(c *gin.Context) {
		checkID := c.Param("checkID")

		ctx, cancel := utils.WithTimeout(c.Request.Context())
		defer cancel()

		if err := checkStore.DeleteCheck(ctx, checkID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				utils.RespondWithNotFound(c, "Check not found")
				return
			}
			logger.Error("check deletion failed", "check_id", checkID, "error", err)
			utils.RespondWithInternalError(c, "Failed to delete check", nil)
			return
		}

		logger.Info("check deleted", "check_id", checkID, "deleted_by", middleware.GetUserID(c))
		c.JSON(http.StatusOK, gin.H{"message": "Check deleted"})
	})

	// Download completed checks as an xlsx report.
	admin.GET("/checks/export", func(c *gin.Context) {
		limit := 0
		if raw := c.Query("limit"); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil || parsed < 0 {
				utils.RespondWithBadRequest(c, "Invalid limit parameter", nil)
				return
			}
			limit = parsed
		}

		ctx, cancel := utils.WithLongTimeout(c.Request.Context())
		defer cancel()

		data, count, err := exportService.ExportCompletedChecks(ctx, limit)
		if err != nil {
			logger.Error("check export failed", "error", err)
			utils.RespondWithInternalError(c, "Failed to generate export", nil)
			return
		}

		filename := fmt.Sprintf("checks_export_%s.xlsx", time.Now().UTC().Format("20060102_150405"))
		c.Header("Content-Disposition", "attachment; filename="+filename)
		c.Header("X-Export-Record-Count", strconv.Itoa(count))
		c.Data(http.StatusOK,
			"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
	})
}

// completedCheckPayload shapes the response body for a completed
// check. detailed_analysis is an object carrying overall_score and
// segments, not a bare segment array.
func completedCheckPayload(check *models.Check, matches []models.Match, analysisDetail models.AnalysisDetail, aiDetail models.AiDetail) gin.H {
	return gin.H{
		"id":                      check.ID,
		"status":                  check.Status,
		"overall_similarity":      check.OverallSimilarity,
		"total_matched_documents": check.TotalMatchedDocuments,
		"ai_probability":          check.AiProbability,
		"ai_level":                check.AiLevel,
		"ai_detail":               aiDetail,
		"matches":                 matches,
		"detailed_analysis":       analysisDetail,
		"created_at":              check.CreatedAt,
		"completed_at":            check.CompletedAt,
	}
}

func paginationParams(c *gin.Context) (page, limit int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultPageLimit)))
	if limit < 1 || limit > maxPageLimit {
		limit = defaultPageLimit
	}
	return page, limit
}
