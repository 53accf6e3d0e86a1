package repository

// Tx is an opaque execution handle passed through repository methods.
//
// The concrete type is infra-defined (pgx.Tx, *pgxpool.Conn or *pgxpool.Pool for
// Postgres). Repositories MUST accept nil and fall back to their pool.
//
// The webhook pipeline always passes NoTX: every write is an independent,
// non-transactional overwrite, so duplicate deliveries converge without locking.
type Tx interface{}

var NoTX Tx
