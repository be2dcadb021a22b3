package upstream

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/sipas-id/sipas-portal/internal/app/models"
)

// Typed wrappers over the backend's resource endpoints. All of them
// decode through the shared envelope normalization.

func (c *Client) ListUsers(ctx context.Context, src TokenSource) ([]models.User, error) {
	var out []models.User
	if err := c.get(ctx, src, "/users", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateUser(ctx context.Context, src TokenSource, fields map[string]any) (*models.User, error) {
	var out models.User
	if err := c.post(ctx, src, "/users", fields, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateUser(ctx context.Context, src TokenSource, id string, fields map[string]any) (*models.User, error) {
	var out models.User
	if err := c.put(ctx, src, "/users/"+url.PathEscape(id), fields, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteUser(ctx context.Context, src TokenSource, id string) error {
	return c.delete(ctx, src, "/users/"+url.PathEscape(id))
}

func (c *Client) ListTools(ctx context.Context, src TokenSource) ([]models.Tool, error) {
	var out []models.Tool
	if err := c.get(ctx, src, "/tools", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetTool(ctx context.Context, src TokenSource, id string) (*models.Tool, error) {
	var out models.Tool
	if err := c.get(ctx, src, "/tools/"+url.PathEscape(id), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateTool(ctx context.Context, src TokenSource, fields map[string]any) (*models.Tool, error) {
	var out models.Tool
	if err := c.post(ctx, src, "/tools", fields, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateTool(ctx context.Context, src TokenSource, id string, fields map[string]any) (*models.Tool, error) {
	var out models.Tool
	if err := c.put(ctx, src, "/tools/"+url.PathEscape(id), fields, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteTool(ctx context.Context, src TokenSource, id string) error {
	return c.delete(ctx, src, "/tools/"+url.PathEscape(id))
}

func (c *Client) ListCategories(ctx context.Context, src TokenSource) ([]models.Category, error) {
	var out []models.Category
	if err := c.get(ctx, src, "/categories", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateCategory(ctx context.Context, src TokenSource, fields map[string]any) (*models.Category, error) {
	var out models.Category
	if err := c.post(ctx, src, "/categories", fields, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateCategory(ctx context.Context, src TokenSource, id string, fields map[string]any) (*models.Category, error) {
	var out models.Category
	if err := c.put(ctx, src, "/categories/"+url.PathEscape(id), fields, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteCategory(ctx context.Context, src TokenSource, id string) error {
	return c.delete(ctx, src, "/categories/"+url.PathEscape(id))
}

func (c *Client) ListBorrowings(ctx context.Context, src TokenSource) ([]models.Borrowing, error) {
	var out []models.Borrowing
	if err := c.get(ctx, src, "/borrowings", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) MyBorrowings(ctx context.Context, src TokenSource) ([]models.Borrowing, error) {
	var out []models.Borrowing
	if err := c.get(ctx, src, "/borrowings/my", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateBorrowing(ctx context.Context, src TokenSource, req models.CreateBorrowingRequest) (*models.Borrowing, error) {
	var out models.Borrowing
	if err := c.post(ctx, src, "/borrowings", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ApproveBorrowing(ctx context.Context, src TokenSource, id string) (*models.Borrowing, error) {
	var out models.Borrowing
	if err := c.put(ctx, src, "/borrowings/"+url.PathEscape(id)+"/approve", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) RejectBorrowing(ctx context.Context, src TokenSource, id, reason string) (*models.Borrowing, error) {
	var out models.Borrowing
	body := map[string]string{"reason": reason}
	if err := c.put(ctx, src, "/borrowings/"+url.PathEscape(id)+"/reject", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ReturnBorrowing(ctx context.Context, src TokenSource, id string) (*models.Borrowing, error) {
	var out models.Borrowing
	if err := c.put(ctx, src, "/borrowings/"+url.PathEscape(id)+"/return", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ActivityLogs(ctx context.Context, src TokenSource) ([]models.ActivityLog, error) {
	var out []models.ActivityLog
	if err := c.get(ctx, src, "/activity-logs", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) DashboardStats(ctx context.Context, src TokenSource) (*models.DashboardStats, error) {
	var out models.DashboardStats
	if err := c.get(ctx, src, "/dashboard/stats", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GenerateReport streams the backend's report binary straight to the
// response, copying the upstream content type through before any body
// bytes are written.
func (c *Client) GenerateReport(ctx context.Context, src TokenSource, reportType, period string, w http.ResponseWriter) error {
	q := url.Values{}
	q.Set("type", reportType)
	q.Set("period", period)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+"/reports/generate?"+q.Encode(), nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if tok := tokenFrom(src); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("upstream request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if resp.StatusCode == http.StatusUnauthorized && c.onUnauthorized != nil {
			c.onUnauthorized(src)
		}
		return &StatusError{Code: resp.StatusCode}
	}

	if ct := resp.Header.Get("Content-Type"); ct != "" {
		w.Header().Set("Content-Type", ct)
	}
	if _, err := io.Copy(w, resp.Body); err != nil {
		return fmt.Errorf("stream report: %w", err)
	}
	return nil
}
