// Package handlers wires the REST gateway and the websocket entry point
// onto Fiber.
package handlers

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/DS9cl/Web/internal/model"
	"github.com/DS9cl/Web/internal/store"
)

// REST holds the handlers' dependencies.
type REST struct {
	Store store.Store
}

// NewREST returns REST handlers over st.
func NewREST(st store.Store) *REST {
	return &REST{Store: st}
}

// Login POST /login {username}
// Finds the user by exact username or creates one; idempotent for existing
// usernames.
func (h *REST) Login(c *fiber.Ctx) error {
	var req struct {
		Username string `json:"username"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).SendString("Username required")
	}
	username := strings.TrimSpace(req.Username)
	if username == "" {
		return c.Status(fiber.StatusBadRequest).SendString("Username required")
	}

	var user model.User
	err := h.Store.Update(func(d *model.Dataset) error {
		if u := d.UserByName(username); u != nil {
			user = *u
			return nil
		}
		user = model.User{ID: d.NextUserID(), Username: username}
		d.Users = append(d.Users, user)
		return nil
	})
	if err != nil {
		return fmt.Errorf("login %q: %w", username, err)
	}
	return c.JSON(user)
}

// ListServers GET /servers
func (h *REST) ListServers(c *fiber.Ctx) error {
	d, err := h.Store.ReadAll()
	if err != nil {
		return fmt.Errorf("list servers: %w", err)
	}
	return c.JSON(d.Servers)
}

// CreateServer POST /servers {name}
// Every new server gets the default "general" channel. Repeated names
// create distinct servers.
func (h *REST) CreateServer(c *fiber.Ctx) error {
	var req struct {
		Name string `json:"name"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).SendString("Server name required")
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return c.Status(fiber.StatusBadRequest).SendString("Server name required")
	}

	var srv model.Server
	err := h.Store.Update(func(d *model.Dataset) error {
		srv = model.Server{
			ID:       d.NextServerID(),
			Name:     name,
			Channels: []model.Channel{{ID: 1, Name: "general"}},
		}
		d.Servers = append(d.Servers, srv)
		return nil
	})
	if err != nil {
		return fmt.Errorf("create server %q: %w", name, err)
	}
	return c.JSON(srv)
}

// Messages GET /messages/:serverId/:channelId
// Both ids are parsed before comparison; non-numeric ids are a 400, not an
// empty match.
func (h *REST) Messages(c *fiber.Ctx) error {
	serverID, err := strconv.Atoi(c.Params("serverId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).SendString("Invalid server id")
	}
	channelID, err := strconv.Atoi(c.Params("channelId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).SendString("Invalid channel id")
	}

	d, err := h.Store.ReadAll()
	if err != nil {
		return fmt.Errorf("get messages %d/%d: %w", serverID, channelID, err)
	}
	return c.JSON(d.MessagesIn(serverID, channelID))
}
