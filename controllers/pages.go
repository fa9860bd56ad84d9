package controllers

import (
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// Pages serves the frontend from root. "/" maps to index.html and a path
// without an extension gets ".html" appended.
func Pages(root string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		name := c.Path()
		if name == "/" {
			name = "/index.html"
		}
		name = strings.TrimPrefix(name, "/")

		if strings.Contains(name, "..") {
			return fail(c, fiber.StatusForbidden, "forbidden")
		}
		if path.Ext(name) == "" {
			name += ".html"
		}

		file := filepath.Join(root, filepath.FromSlash(name))
		info, err := os.Stat(file)
		if err != nil || info.IsDir() {
			return fail(c, fiber.StatusNotFound, "file not found")
		}
		return c.SendFile(file)
	}
}
