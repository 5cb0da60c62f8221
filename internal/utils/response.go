package utils

import (
	"errors"

	apperrors "medipay/internal/errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

// Respond sends a JSON response with the specified status code.
func Respond(c *fiber.Ctx, status int, data interface{}) error {
	return c.Status(status).JSON(data)
}

// Success sends a successful JSON response.
func Success(c *fiber.Ctx, data interface{}) error {
	return Respond(c, fiber.StatusOK, data)
}

// Created sends a JSON response with status 201.
func Created(c *fiber.Ctx, data interface{}) error {
	return Respond(c, fiber.StatusCreated, data)
}

// BadRequest sends a JSON error response with status 400.
func BadRequest(c *fiber.Ctx, message string) error {
	return Respond(c, fiber.StatusBadRequest, fiber.Map{"error": message})
}

// Unauthorized sends a JSON error response with status 401.
func Unauthorized(c *fiber.Ctx, message string) error {
	return Respond(c, fiber.StatusUnauthorized, fiber.Map{"error": message})
}

// Forbidden sends a JSON error response with status 403.
func Forbidden(c *fiber.Ctx, message string) error {
	return Respond(c, fiber.StatusForbidden, fiber.Map{"error": message})
}

// NotFound sends a JSON error response with status 404.
func NotFound(c *fiber.Ctx, message string) error {
	return Respond(c, fiber.StatusNotFound, fiber.Map{"error": message})
}

// InternalError sends a JSON error response with status 500.
func InternalError(c *fiber.Ctx, message string) error {
	return Respond(c, fiber.StatusInternalServerError, fiber.Map{"error": message})
}

// StatusFor maps a domain error code to an HTTP status.
func StatusFor(code string) int {
	switch code {
	case apperrors.CodeNotFound:
		return fiber.StatusNotFound
	case apperrors.CodeForbidden:
		return fiber.StatusForbidden
	case apperrors.CodeInvalidState:
		return fiber.StatusConflict
	case apperrors.CodeInvalidSignature, apperrors.CodeInvalidAmount, apperrors.CodeValidation:
		return fiber.StatusBadRequest
	case apperrors.CodeInsufficientBalance:
		return fiber.StatusUnprocessableEntity
	case apperrors.CodeGatewayUnavailable:
		return fiber.StatusServiceUnavailable
	}
	return fiber.StatusInternalServerError
}

// Error writes err as a JSON error body. Domain errors keep their message,
// anything else is logged and hidden behind a generic 500.
func Error(c *fiber.Ctx, err error) error {
	var de *apperrors.DomainError
	if errors.As(err, &de) {
		return Respond(c, StatusFor(de.Code), fiber.Map{
			"error": err.Error(),
			"code":  de.Code,
		})
	}
	log.Error().Err(err).Str("path", c.Path()).Msg("unhandled error")
	return InternalError(c, "internal server error")
}
