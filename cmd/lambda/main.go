package main

import (
	"context"
	"log"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	chiadapter "github.com/awslabs/aws-lambda-go-api-proxy/chi"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"mab-backend/infrastructure/config"
	"mab-backend/infrastructure/di"
)

// Global variables for Lambda lifecycle management
var (
	// chiLambda wraps the Chi router for AWS Lambda integration
	chiLambda *chiadapter.ChiLambdaV2

	// container holds the dependency injection container
	container *di.Container

	// coldStart tracks whether this is a cold start invocation
	coldStart = true

	// coldStartTime records when the cold start began
	coldStartTime time.Time
)

// init runs during cold start
func init() {
	coldStartTime = time.Now()
	log.Println("Lambda cold start initiated")

	ctx := context.Background()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	container, err = di.InitializeContainer(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize container: %v", err)
	}

	handler := container.Router.Setup()

	// Create Lambda adapter - need to type assert to *chi.Mux
	chiRouter, ok := handler.(*chi.Mux)
	if !ok {
		log.Fatal("Failed to cast handler to chi.Mux")
	}
	chiLambda = chiadapter.NewV2(chiRouter)

	log.Printf("Lambda cold start completed for %s in %v", cfg.LambdaFunctionName, time.Since(coldStartTime))
}

// authorizedUser pulls the caller identity that the API Gateway
// authorizer attached to the request. The Cognito JWT authorizer puts
// claims under jwt.claims; a Lambda authorizer passes them through its
// context map.
func authorizedUser(req events.APIGatewayV2HTTPRequest) string {
	auth := req.RequestContext.Authorizer
	if auth == nil {
		return ""
	}
	if auth.JWT != nil {
		if name := auth.JWT.Claims["cognito:username"]; name != "" {
			return name
		}
		if sub := auth.JWT.Claims["sub"]; sub != "" {
			return sub
		}
	}
	if claims, ok := auth.Lambda["claims"].(map[string]interface{}); ok {
		if name, ok := claims["cognito:username"].(string); ok && name != "" {
			return name
		}
		if sub, ok := claims["sub"].(string); ok && sub != "" {
			return sub
		}
	}
	return ""
}

// Handler is the Lambda function handler
func Handler(ctx context.Context, req events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	if container != nil && container.Logger != nil {
		container.Logger.Info("Lambda received request",
			zap.String("path", req.RequestContext.HTTP.Path),
			zap.String("method", req.RequestContext.HTTP.Method),
			zap.String("request_id", req.RequestContext.RequestID),
		)
	}

	if req.Headers == nil {
		req.Headers = make(map[string]string)
	}

	// Authentication happened at the gateway; forward the resolved user
	// so the API key handlers can scope their queries to the caller.
	if userID := authorizedUser(req); userID != "" {
		req.Headers["x-user-id"] = userID
	}

	// Process the request through the Chi router
	resp, err := chiLambda.ProxyWithContextV2(ctx, req)

	// Add custom headers for monitoring
	if resp.Headers == nil {
		resp.Headers = make(map[string]string)
	}

	if coldStart {
		resp.Headers["X-Cold-Start"] = "true"
		resp.Headers["X-Cold-Start-Duration"] = time.Since(coldStartTime).String()
		coldStart = false
	} else {
		resp.Headers["X-Cold-Start"] = "false"
	}

	if req.RequestContext.RequestID != "" {
		resp.Headers["X-Request-ID"] = req.RequestContext.RequestID
	}

	if container != nil && container.Logger != nil {
		container.Logger.Info("Lambda response",
			zap.String("method", req.RequestContext.HTTP.Method),
			zap.String("path", req.RequestContext.HTTP.Path),
			zap.String("request_id", req.RequestContext.RequestID),
			zap.Int("status_code", resp.StatusCode),
		)

		// Log response body if it's an error
		if resp.StatusCode >= 400 && resp.StatusCode < 600 {
			container.Logger.Error("Lambda error response",
				zap.String("body", resp.Body),
				zap.Int("status_code", resp.StatusCode),
			)
		}
	}

	return resp, err
}

// main is the entry point for the Lambda function
func main() {
	lambda.Start(Handler)
}
