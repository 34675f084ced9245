package httpgin

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kirinyoku/cartodesk/internal/report"
	"github.com/kirinyoku/cartodesk/internal/service"
)

func periodFrom(c *gin.Context) report.Period {
	return report.Period{From: c.Query("from"), To: c.Query("to")}
}

// @Summary  Clients ranked by total spent (admin)
// @Security BearerAuth
// @Success  200  {array}  domain.Client
// @Router   /reports/clients [get]
func handleGetClients(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Report-Scope", string(svcs.Reports.Scope()))
		c.JSON(http.StatusOK, svcs.Reports.Clients(c.Request.Context()))
	}
}

// @Summary  Revenue breakdown (admin)
// @Security BearerAuth
// @Param    from  query  string  false  "YYYY-MM-DD"
// @Param    to    query  string  false  "YYYY-MM-DD"
// @Success  200  {object}  report.Financial
// @Failure  400  {object}  ErrorResponse
// @Router   /reports/financial [get]
func handleGetFinancial(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		f, err := svcs.Reports.Financial(c.Request.Context(), periodFrom(c))
		if err != nil {
			respondErr(c, err)
			return
		}
		c.Header("X-Report-Scope", string(svcs.Reports.Scope()))
		c.JSON(http.StatusOK, f)
	}
}

// @Summary  Net profit after payouts and ad spend (admin)
// @Security BearerAuth
// @Param    from  query  string  false  "YYYY-MM-DD"
// @Param    to    query  string  false  "YYYY-MM-DD"
// @Success  200  {object}  report.Profit
// @Failure  400  {object}  ErrorResponse
// @Router   /reports/profit [get]
func handleGetProfit(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, err := svcs.Reports.Profit(c.Request.Context(), periodFrom(c))
		if err != nil {
			respondErr(c, err)
			return
		}
		c.Header("X-Report-Scope", string(svcs.Reports.Scope()))
		c.JSON(http.StatusOK, p)
	}
}

// @Summary  Revenue, spend and ROAS per campaign (admin)
// @Security BearerAuth
// @Param    from  query  string  false  "YYYY-MM-DD"
// @Param    to    query  string  false  "YYYY-MM-DD"
// @Success  200  {array}   report.CampaignROI
// @Failure  400  {object}  ErrorResponse
// @Router   /reports/campaigns [get]
func handleGetCampaigns(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		out, err := svcs.Reports.Campaigns(c.Request.Context(), periodFrom(c))
		if err != nil {
			respondErr(c, err)
			return
		}
		c.Header("X-Report-Scope", string(svcs.Reports.Scope()))
		c.JSON(http.StatusOK, out)
	}
}

// @Summary  Today's operation
// @Security BearerAuth
// @Success  200  {object}  report.Dashboard
// @Router   /reports/dashboard [get]
func handleGetDashboard(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		writeJSONWithETag(c, http.StatusOK, svcs.Reports.Dashboard(c.Request.Context()))
	}
}

// @Summary  Finished games for export (admin)
// @Security BearerAuth
// @Param    from             query  string  false  "YYYY-MM-DD"
// @Param    to               query  string  false  "YYYY-MM-DD"
// @Param    practitioner_id  query  string  false  "practitioner"
// @Success  200  {array}   domain.Game
// @Failure  400  {object}  ErrorResponse
// @Router   /reports/export [get]
func handleExportFinished(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		out, err := svcs.Reports.ExportFinished(
			c.Request.Context(),
			periodFrom(c),
			c.Query("practitioner_id"),
		)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, out)
	}
}

// @Summary  Record the ad spend of a campaign (admin)
// @Security BearerAuth
// @Param    name  path  string           true  "Campaign name"
// @Param    req   body  SetSpendRequest  true  "payload"
// @Success  200  {object}  domain.CampaignSpend
// @Failure  400  {object}  ErrorResponse
// @Router   /campaigns/{name}/spend [put]
func handleSetSpend(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req SetSpendRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}

		cs, err := svcs.Reports.SetSpend(c.Request.Context(), c.Param("name"), req.Spend)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, cs)
	}
}
