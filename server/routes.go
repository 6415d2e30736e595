package server

func (s *Server) initRoutes() {
	s.RegisterRouteFunc("GET "+RouteWellKnownOpenIDConfig, ChainMiddleware(s.WellKnownOpenIDConfig(), s.APIMiddleware()...))
	s.RegisterRouteFunc("POST "+RouteOAuth2Token, ChainMiddleware(s.Token(), s.APIMiddleware()...))
	s.RegisterRouteFunc("POST "+RouteOAuth2Revoke, ChainMiddleware(s.Revoke(), s.APIMiddleware()...))

	for _, prefix := range []string{RouteData, RouteUserFramework} {
		s.RegisterRouteFunc("GET "+prefix, ChainMiddleware(s.DataEcho(), s.APIMiddleware(s.RequireAuth())...))
		s.RegisterRouteFunc("POST "+prefix, ChainMiddleware(s.DataEcho(), s.APIMiddleware(s.RequireAuth())...))
	}
}
