package apiclient

// Session mirrors the admin API's session view (pkg/adminapi/handlers.sessionView).
type Session struct {
	ID          uint64 `json:"id"`
	CachedNodes int    `json:"cached_nodes"`
	TotalNodes  int    `json:"total_nodes"`
}

// ListSessions returns every currently open session with its handle-table
// occupancy.
func (c *Client) ListSessions() ([]Session, error) {
	var sessions []Session
	if err := c.get("/sessions", &sessions); err != nil {
		return nil, err
	}
	return sessions, nil
}
