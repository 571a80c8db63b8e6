package admin

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/tasniazannat65/micro-task-earning-platform-server/internal/db"
	"github.com/tasniazannat65/micro-task-earning-platform-server/internal/user"
)

// ListUsers serves GET /admin/manage-users.
func ListUsers(c echo.Context) error {
	rows, err := db.Conn.Query(c.Request().Context(),
		`SELECT id, name, email, COALESCE(image_url, ''), role, coins, created_at
         FROM users ORDER BY created_at DESC`)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Server error"})
	}
	defer rows.Close()

	var users []user.User
	for rows.Next() {
		var u user.User
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.ImageURL, &u.Role, &u.Coins, &u.CreatedAt); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Server error"})
		}
		users = append(users, u)
	}
	return c.JSON(http.StatusOK, users)
}

// DeleteUser serves DELETE /admin/manage-users/:id.
func DeleteUser(c echo.Context) error {
	tag, err := db.Conn.Exec(c.Request().Context(),
		`DELETE FROM users WHERE id = $1`, c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Server error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"success": tag.RowsAffected() > 0})
}

type roleRequest struct {
	Role string `json:"role"`
}

// UpdateUserRole serves PATCH /admin/manage-users/:id/role.
func UpdateUserRole(c echo.Context) error {
	req := new(roleRequest)
	if err := c.Bind(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid request"})
	}
	switch req.Role {
	case "admin", "buyer", "worker":
	default:
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid role"})
	}

	tag, err := db.Conn.Exec(c.Request().Context(),
		`UPDATE users SET role = $1 WHERE id = $2`, req.Role, c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Server error"})
	}
	if tag.RowsAffected() == 0 {
		return c.JSON(http.StatusNotFound, echo.Map{"message": "User not found"})
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}
