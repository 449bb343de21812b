//go:generate go run go.uber.org/mock/mockgen -source=connection.go -destination=../mocks/mock_connection.go -package=mocks
package presence

// Connection is the transport-level handle of one client. Send must not block:
// implementations drop the payload and return an error when the outbound queue
// is full or already closed.
type Connection interface {
	ID() string
	Send(data []byte) error
}
