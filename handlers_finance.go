package main

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/ventiam/ventiam_backend/middlewares"
	"github.com/ventiam/ventiam_backend/models"
)

func getFinanceAccountsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		accounts, err := models.GetFinanceAccounts(ctx)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if boolQuery(c, "include_bills") {
			for _, account := range accounts {
				bills, err := middlewares.GetAccountBills(ctx, account.ID)
				if err != nil {
					c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
					return
				}
				account.Bills = bills
			}
		}
		c.JSON(http.StatusOK, gin.H{"data": accounts})
	}
}

func createFinanceAccountHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.NewFinanceAccount
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		account, err := models.CreateFinanceAccount(c.Request.Context(), &input)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": account})
	}
}

func updateFinanceAccountHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := idParam(c)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		var input models.NewFinanceAccount
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		account, err := models.UpdateFinanceAccount(c.Request.Context(), id, &input)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": account})
	}
}

func deleteFinanceAccountHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := idParam(c)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		account, err := models.DeleteFinanceAccount(c.Request.Context(), id)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": account})
	}
}

func getFinanceBillsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		bills, err := models.GetFinanceBills(ctx)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if boolQuery(c, "include_accounts") {
			for _, bill := range bills {
				if bill.BillingAccountId == nil || *bill.BillingAccountId == 0 {
					continue
				}
				account, err := middlewares.GetFinanceAccount(ctx, *bill.BillingAccountId)
				if err != nil {
					continue
				}
				bill.BillingAccount = account
			}
		}
		c.JSON(http.StatusOK, gin.H{"data": bills})
	}
}

func createFinanceBillHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.NewFinanceBill
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		bill, err := models.CreateFinanceBill(c.Request.Context(), &input)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": bill})
	}
}

func updateFinanceBillHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := idParam(c)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		var input models.NewFinanceBill
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		bill, err := models.UpdateFinanceBill(c.Request.Context(), id, &input)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": bill})
	}
}

func deleteFinanceBillHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := idParam(c)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		bill, err := models.DeleteFinanceBill(c.Request.Context(), id)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": bill})
	}
}

func getBillingPeriodsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		periods, err := models.GetBillingPeriods(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": periods})
	}
}

func getCurrentBillingPeriodHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		period, err := models.GetCurrentBillingPeriod(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": period})
	}
}

func createBillingPeriodHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.NewFinanceBillingPeriod
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		period, err := models.CreateBillingPeriod(c.Request.Context(), &input)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": period})
	}
}

func updateBillingPeriodHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := idParam(c)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		var input models.NewFinanceBillingPeriod
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		period, err := models.UpdateBillingPeriod(c.Request.Context(), id, &input)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": period})
	}
}

func markBillPaidHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.MarkBillPaidInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		period, err := models.MarkBillPaid(c.Request.Context(), &input)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": period})
	}
}

// getProjectionHandler computes the live cash-flow projection for the current
// billing period. Nothing is persisted here.
func getProjectionHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		projection, breakdowns, err := models.ComputeProjection(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": gin.H{
			"projection": projection,
			"breakdown":  breakdowns,
		}})
	}
}

func saveProjectionHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.NewFinanceProjection
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		projection, err := models.SaveProjection(c.Request.Context(), &input)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": projection})
	}
}

func getProjectionHistoryHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		from, to, err := dateRangeQuery(c)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		projections, err := models.GetProjections(c.Request.Context(), from, to)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": projections})
	}
}

func bulkInsertProjectionsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var inputs []*models.NewFinanceProjection
		if err := c.ShouldBindJSON(&inputs); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		result, err := models.BulkInsertProjections(c.Request.Context(), inputs)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": result})
	}
}

func getMonthlySnapshotsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		months := 12
		if raw := strings.TrimSpace(c.Query("months")); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil || parsed <= 0 {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid months"})
				return
			}
			months = parsed
		}
		snapshots, err := models.GetMonthlySnapshots(c.Request.Context(), months)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": snapshots})
	}
}
