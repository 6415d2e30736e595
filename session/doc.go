// Package session holds the OAuth2 password-grant token of a single platform
// session and dispatches authenticated requests with it.
//
//	m, _ := session.NewManager(endpoints.FromBaseURL("https://api.refinitiv.com"))
//	s, err := m.Open(ctx, session.Credentials{Username: u, Password: p, ClientID: appKey})
//	resp, err := m.Dispatch(ctx, s, session.Get("data/environmental-social-governance/v1/views/scores-full",
//		map[string]string{"universe": "IBM.N"}))
//	err = m.Close(ctx, s)
package session
