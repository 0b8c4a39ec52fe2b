// Package accounts has services for interacting with and modifying API
// accounts, decoupled from the HTTP layer that accesses it.
package accounts

import (
	"github.com/dekarrin/simone/server/dao"
)

// Service performs account actions and makes calls to server persistence to
// preserve the backend state.
//
// The zero-value of Service is not ready to be used; assign a valid DAO
// store to DB before attempting to use it.
type Service struct {
	// DB is the persistence store of the service.
	DB dao.Store
}
