package apiclient

// Share mirrors the admin API's share view (pkg/adminapi/handlers.shareView).
type Share struct {
	Name           string `json:"name"`
	RootPath       string `json:"root_path"`
	ReadAllowed    bool   `json:"read_allowed"`
	WriteAllowed   bool   `json:"write_allowed"`
	CaseSensitive  bool   `json:"case_sensitive"`
	FollowSymlinks bool   `json:"follow_symlinks"`
	FreeBytes      uint64 `json:"free_bytes"`
	TotalBytes     uint64 `json:"total_bytes"`
}

// ListShares returns every share configured on the server.
func (c *Client) ListShares() ([]Share, error) {
	var shares []Share
	if err := c.get("/shares", &shares); err != nil {
		return nil, err
	}
	return shares, nil
}
