package pinner

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/solstice-labs/ipfs-pinner/pkg/pinner/source"
)

type pinRequest struct {
	Input string `json:"input" binding:"required"`
}

type pinMetadataRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	Image       string `json:"image" binding:"required"`
}

type pinBatchRequest struct {
	Inputs []string `json:"inputs" binding:"required"`
}

type pinResult struct {
	Cid string `json:"cid"`
	Url string `json:"url"`
}

func (s *Service) generateRouter() *gin.Engine {
	router := gin.Default()

	router.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	router.GET("/ipfs/:cid", func(c *gin.Context) {
		c.String(http.StatusOK, s.GatewayUrl(c.Param("cid")))
	})

	router.POST("/pin", func(c *gin.Context) {
		var req pinRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.String(http.StatusBadRequest, err.Error())
			return
		}

		src, err := source.FromString(req.Input)
		if err != nil {
			c.String(http.StatusBadRequest, err.Error())
			return
		}

		cid, err := s.Pin(c.Request.Context(), src)
		if err != nil {
			c.String(http.StatusInternalServerError, err.Error())
			return
		}

		c.JSON(http.StatusOK, pinResult{Cid: cid, Url: s.GatewayUrl(cid)})
	})

	router.POST("/pin/file", func(c *gin.Context) {
		fileHeader, err := c.FormFile("file")
		if err != nil {
			c.String(http.StatusBadRequest, err.Error())
			return
		}

		file, err := fileHeader.Open()
		if err != nil {
			c.String(http.StatusInternalServerError, err.Error())
			return
		}
		defer file.Close()

		cid, err := s.PinReader(c.Request.Context(), fileHeader.Filename, file)
		if err != nil {
			c.String(http.StatusInternalServerError, err.Error())
			return
		}

		c.JSON(http.StatusOK, pinResult{Cid: cid, Url: s.GatewayUrl(cid)})
	})

	router.POST("/pin/json", func(c *gin.Context) {
		var value interface{}
		if err := c.ShouldBindJSON(&value); err != nil {
			c.String(http.StatusBadRequest, err.Error())
			return
		}

		cid, err := s.PinJson(c.Request.Context(), value)
		if err != nil {
			c.String(http.StatusInternalServerError, err.Error())
			return
		}

		c.JSON(http.StatusOK, pinResult{Cid: cid, Url: s.GatewayUrl(cid)})
	})

	router.POST("/pin/metadata", func(c *gin.Context) {
		var req pinMetadataRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.String(http.StatusBadRequest, err.Error())
			return
		}

		cid, err := s.PinMetadata(c.Request.Context(), req.Name, req.Description, req.Image)
		if err != nil {
			c.String(http.StatusInternalServerError, err.Error())
			return
		}

		c.JSON(http.StatusOK, pinResult{Cid: cid, Url: s.GatewayUrl(cid)})
	})

	router.POST("/pin/batch", func(c *gin.Context) {
		var req pinBatchRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.String(http.StatusBadRequest, err.Error())
			return
		}

		c.JSON(http.StatusOK, s.PinBatch(c.Request.Context(), req.Inputs))
	})

	return router
}

func (s *Service) GetRouter() *gin.Engine {
	return s.apiRouter
}

func (s *Service) StartServer(ctx context.Context) error {
	slog.Info("starting server", "port", s.apiIpPort)

	if s.apiIpPort == "" {
		slog.Info("api ip port is empty, skipping server")
		return nil
	}

	server := &http.Server{
		Addr:    s.apiIpPort,
		Handler: s.apiRouter,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
		}
	}()

	go func() {
		<-ctx.Done()
		if err := server.Shutdown(context.Background()); err != nil {
			slog.Error("server shutdown error", "error", err)
		}
	}()

	return nil
}
