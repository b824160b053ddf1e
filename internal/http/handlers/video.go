package handlers

import (
	"net/http"
	"net/http/httputil"
	"net/url"

	"gesture_rps/internal/logger"

	"github.com/gin-gonic/gin"
)

// VideoFeed proxies the classifier's annotated MJPEG stream. The stream is
// long-lived, so responses are flushed as they arrive.
func VideoFeed(visionURL string) (gin.HandlerFunc, error) {
	if visionURL == "" {
		return func(c *gin.Context) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "vision service not configured"})
		}, nil
	}

	target, err := url.Parse(visionURL)
	if err != nil {
		return nil, err
	}

	proxy := httputil.NewSingleHostReverseProxy(target)
	proxy.FlushInterval = -1
	proxy.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
		logger.WithContext(r.Context()).Warn("video feed proxy error", "error", err)
		w.WriteHeader(http.StatusBadGateway)
	}

	return func(c *gin.Context) {
		c.Request.URL.Path = "/video_feed"
		proxy.ServeHTTP(c.Writer, c.Request)
	}, nil
}
