package utils

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var Validate = validator.New()

// SendData writes the success envelope around a single payload entry,
// e.g. {"status":"success","data":{"tour":{...}}}.
func SendData(c *fiber.Ctx, status int, key string, value interface{}) error {
	return c.Status(status).JSON(fiber.Map{
		"status": "success",
		"data":   fiber.Map{key: value},
	})
}

// SendList writes the success envelope for list payloads, including the
// result count.
func SendList(c *fiber.Ctx, key string, results int, value interface{}) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status":  "success",
		"results": results,
		"data":    fiber.Map{key: value},
	})
}
