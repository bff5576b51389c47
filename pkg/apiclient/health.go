package apiclient

// Health is the data payload of a healthy /health/ready response.
type Health struct {
	Shares int `json:"shares"`
}

// Ready checks the server's readiness endpoint. A nil error means the
// server responded with a healthy status; any error (including an
// *APIError for an unhealthy response) means it did not.
func (c *Client) Ready() (*Health, error) {
	var h Health
	if err := c.get("/health/ready", &h); err != nil {
		return nil, err
	}
	return &h, nil
}
