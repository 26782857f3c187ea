// Package storage provides a unified interface for the storage backends
// used by the blog service.
//
// It defines the core abstractions that all storage implementations follow,
// enabling consistent behavior across PostgreSQL, Redis and Milvus:
//   - Client: base interface for all storage clients
//   - Manager: registry and lifecycle management for multiple clients
//   - Errors: coded errors comparable with errors.Is
//   - Health checking: built-in health check support for the readiness
//     endpoint
//
// # Using the Manager
//
// For applications using multiple storage backends:
//
//	mgr := storage.NewManager()
//	mgr.MustRegister("postgres", pgClient)
//	mgr.MustRegister("redis", redisClient)
//
//	// Health check all clients
//	statuses := mgr.HealthCheckAll(ctx)
//	for name, status := range statuses {
//	    if !status.Healthy {
//	        log.Printf("%s: unhealthy - %v", name, status.Error)
//	    }
//	}
//
//	// Close all clients on shutdown
//	defer mgr.CloseAll()
//
// # Error Handling
//
// Manager failures come back as coded sentinels:
//
//	if _, err := mgr.Get("milvus"); errors.Is(err, storage.ErrClientNotFound) {
//	    log.Println("vector store was never registered")
//	}
//
// # Thread Safety
//
// The Manager is safe for concurrent use. Storage client implementations
// document their own thread-safety guarantees.
package storage
