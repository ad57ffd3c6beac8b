package main

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ventiam/ventiam_backend/middlewares"
	"github.com/ventiam/ventiam_backend/models"
	"github.com/ventiam/ventiam_backend/utils"
)

func getHabitsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		habits, err := models.GetHabits(c.Request.Context(), boolQuery(c, "include_archived"))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": habits})
	}
}

func getHabitHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := idParam(c)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		habit, err := models.GetHabit(c.Request.Context(), id)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": habit})
	}
}

func createHabitHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.NewHabit
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		habit, err := models.CreateHabit(c.Request.Context(), &input)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": habit})
	}
}

func updateHabitHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := idParam(c)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		var input models.NewHabit
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		habit, err := models.UpdateHabit(c.Request.Context(), id, &input)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": habit})
	}
}

func deleteHabitHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := idParam(c)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		habit, err := models.DeleteHabit(c.Request.Context(), id)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": habit})
	}
}

func upsertHabitEntryHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.NewHabitEntry
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		entry, err := models.UpsertHabitEntry(c.Request.Context(), &input)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": entry})
	}
}

func deleteHabitEntryHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := idParam(c)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		date := strings.TrimSpace(c.Query("date"))
		if date == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "date is required"})
			return
		}
		if err := models.DeleteHabitEntry(c.Request.Context(), id, date); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": true})
	}
}

func getHabitEntriesHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := idParam(c)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		from, to, err := dateRangeQuery(c)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		ctx := c.Request.Context()
		if _, err := middlewares.GetHabitById(ctx, id); err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "habit not found"})
			return
		}
		// unbounded reads go through the batched loader
		if from == nil && to == nil {
			entries, err := middlewares.GetHabitEntriesByHabit(ctx, id)
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				return
			}
			c.JSON(http.StatusOK, gin.H{"data": entries})
			return
		}
		entries, err := models.GetHabitEntries(ctx, id, from, to)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": entries})
	}
}

// getHabitWeekHandler summarizes the week containing ?date= (default today).
func getHabitWeekHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		ref := time.Now().UTC()
		if raw := strings.TrimSpace(c.Query("date")); raw != "" {
			parsed, err := utils.ParseDateString(raw)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date"})
				return
			}
			ref = parsed
		}
		summary, err := models.GetWeeklySummary(c.Request.Context(), ref)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": summary})
	}
}
