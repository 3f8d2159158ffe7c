package contracts

import "github.com/julienschmidt/httprouter"

// Handler mounts a service's routes on the shared application router.
// The reservations and orders handlers both register on one router per process.
type Handler interface {
	RegisterRoutes(router *httprouter.Router)
}
