package relay

import "time"

func ClientWithServerURL(serverUrl string) ClientOption {
	return func(c *Client) {
		c.serverURL = serverUrl
	}
}

func ClientWithConnectionStatusCallback(callback ClientConnectionStatusCallback) ClientOption {
	return func(c *Client) {
		c.connectionStatusCallback = callback
	}
}

func ClientWithReconnectInterval(d time.Duration) ClientOption {
	return func(c *Client) {
		c.reconnectInterval = d
	}
}
