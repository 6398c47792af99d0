// Package server assembles the desktop service: the core, the dock, the
// popout channel and both websocket hubs behind one gin router.
//
// Example Usage:
//
//	srv, err := server.NewServer(cfg, logger)
//	if err != nil {
//	    return err
//	}
//	defer srv.Close()
//	return srv.Run()
package server
