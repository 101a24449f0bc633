// Package crmsdk is a Go client for the SalesDesk CRM HTTP API.
//
// The wire types in this package are shared with the server so request and
// response shapes stay in one place.
//
//	c := crmsdk.NewClient("http://localhost:8080")
//	auth, err := c.SignIn(ctx, crmsdk.SignInRequest{Email: "a@b.co", Password: "..."})
//	if err != nil {
//		var apiErr *crmsdk.APIError
//		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized {
//			// bad credentials
//		}
//	}
//	contacts, err := c.ListRecords(ctx, "contacts", crmsdk.ListOptions{Limit: 25})
package crmsdk
