package main

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"repokit/users/application"
)

// userView 对外展示的用户，不含密码哈希
type userView struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

func toView(u application.UserOutput) userView {
	return userView{ID: u.ID, Name: u.Name, Email: u.Email, CreatedAt: u.CreatedAt}
}

func toPageView(p application.PaginationOutput[application.UserOutput]) application.PaginationOutput[userView] {
	items := make([]userView, 0, len(p.Items))
	for _, u := range p.Items {
		items = append(items, toView(u))
	}
	return application.PaginationOutput[userView]{
		Items:       items,
		Total:       p.Total,
		CurrentPage: p.CurrentPage,
		LastPage:    p.LastPage,
		PerPage:     p.PerPage,
	}
}

func printJSON(w io.Writer, v any) error {
	output, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(output))
	return err
}
