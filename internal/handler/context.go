package handler

import (
	"time"

	"go-tinapa-shop/internal/middleware"
	"go-tinapa-shop/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const dateLayout = "2006-01-02"

// Helpers for the user info set by the auth middleware
func getUserID(c *fiber.Ctx) string {
	userID, _ := c.Locals("user_id").(string)
	if userID == "" {
		return "system"
	}
	return userID
}

func getUserName(c *fiber.Ctx) string {
	name, _ := c.Locals("user_name").(string)
	return name
}

func getUserEmail(c *fiber.Ctx) string {
	email, _ := c.Locals("user_email").(string)
	return email
}

func getActor(c *fiber.Ctx) service.Actor {
	return service.Actor{ID: getUserID(c), Name: getUserName(c), Email: getUserEmail(c)}
}

func currentUser(c *fiber.Ctx) (uuid.UUID, error) {
	id := middleware.UserID(c)
	if id == uuid.Nil {
		return uuid.Nil, c.Status(401).JSON(fiber.Map{"error": "Unauthorized", "code": "UNAUTHORIZED"})
	}
	return id, nil
}

func paramUUID(c *fiber.Ctx, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Params(name))
	return id, err == nil
}

// queryDate parses a YYYY-MM-DD query value as local midnight.
func queryDate(c *fiber.Ctx, key string, loc *time.Location) (time.Time, bool, error) {
	raw := c.Query(key)
	if raw == "" {
		return time.Time{}, false, nil
	}
	t, err := time.ParseInLocation(dateLayout, raw, loc)
	if err != nil {
		return time.Time{}, false, err
	}
	return t, true, nil
}

// dateRange reads ?from=&to= as whole local days. Missing bounds default to
// the last defaultDays days.
func dateRange(c *fiber.Ctx, loc *time.Location, now time.Time, defaultDays int) (time.Time, time.Time, error) {
	from, hasFrom, err := queryDate(c, "from", loc)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	to, hasTo, err := queryDate(c, "to", loc)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if !hasTo {
		local := now.In(loc)
		to = time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	}
	if !hasFrom {
		from = to.AddDate(0, 0, -defaultDays+1)
	}
	// to is inclusive
	return from, to.AddDate(0, 0, 1).Add(-time.Nanosecond), nil
}
