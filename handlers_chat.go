package main

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ventiam/ventiam_backend/middlewares"
	"github.com/ventiam/ventiam_backend/models"
)

func getConversationsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		conversations, err := models.GetConversations(c.Request.Context(), boolQuery(c, "include_archived"))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": conversations})
	}
}

func getConversationHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := idParam(c)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		ctx := c.Request.Context()
		conversation, err := middlewares.GetConversationById(ctx, id)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		if conversation.AgentId != nil && *conversation.AgentId > 0 {
			if agent, err := middlewares.GetAgentById(ctx, *conversation.AgentId); err == nil {
				conversation.Agent = agent
			}
		}
		c.JSON(http.StatusOK, gin.H{"data": conversation})
	}
}

func createConversationHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.NewConversation
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		conversation, err := models.CreateConversation(c.Request.Context(), &input)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": conversation})
	}
}

func updateConversationHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := idParam(c)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		var input models.NewConversation
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		conversation, err := models.UpdateConversation(c.Request.Context(), id, &input)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": conversation})
	}
}

func archiveConversationHandler(archived bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := idParam(c)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		conversation, err := models.ArchiveConversation(c.Request.Context(), id, archived)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": conversation})
	}
}

func deleteConversationHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := idParam(c)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		conversation, err := models.DeleteConversation(c.Request.Context(), id)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": conversation})
	}
}

func getMessagesHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := idParam(c)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		messages, err := models.GetMessages(c.Request.Context(), id)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": messages})
	}
}

func sendMessageHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.NewMessage
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		reply, err := models.GenerateReply(c.Request.Context(), &input)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": reply})
	}
}

// streamMessageHandler streams the assistant reply over SSE. Each chunk is a
// `data:` event carrying {"delta": "..."}; the final event is
// {"done": true, "message": {...}} with the persisted reply.
func streamMessageHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.NewMessage
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		flusher, ok := c.Writer.(http.Flusher)
		if !ok {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "streaming not supported"})
			return
		}

		c.Writer.Header().Set("Content-Type", "text/event-stream")
		c.Writer.Header().Set("Cache-Control", "no-cache")
		c.Writer.Header().Set("Connection", "keep-alive")
		c.Writer.WriteHeader(http.StatusOK)
		flusher.Flush()

		writeEvent := func(payload any) error {
			data, err := json.Marshal(payload)
			if err != nil {
				return err
			}
			if _, err := fmt.Fprintf(c.Writer, "data: %s\n\n", data); err != nil {
				return err
			}
			flusher.Flush()
			return nil
		}

		reply, err := models.GenerateReplyStream(c.Request.Context(), &input, func(text string) error {
			return writeEvent(gin.H{"delta": text})
		})
		if err != nil {
			_ = writeEvent(gin.H{"error": err.Error()})
			return
		}
		_ = writeEvent(gin.H{"done": true, "message": reply})
	}
}

func getAgentsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		agents, err := models.GetAgents(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": agents})
	}
}

func createAgentHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.NewAgent
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		agent, err := models.CreateAgent(c.Request.Context(), &input)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": agent})
	}
}

func updateAgentHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := idParam(c)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		var input models.NewAgent
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		agent, err := models.UpdateAgent(c.Request.Context(), id, &input)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": agent})
	}
}

func deleteAgentHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := idParam(c)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		agent, err := models.DeleteAgent(c.Request.Context(), id)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": agent})
	}
}

func getAiModelsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		activeOnly := true
		if boolQuery(c, "include_inactive") {
			activeOnly = false
		}
		catalog, err := models.GetAiModels(c.Request.Context(), activeOnly)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": catalog})
	}
}
