package store

// Tx stages changes to any number of collections and singletons. Nothing is
// visible to readers until Store.Update commits every staged key in one
// storage write.
type Tx struct {
	s      *Store
	staged map[string]any
	order  []string
	ops    []txOp
}

type txOp struct {
	collection string
	op         string
	result     Result
}

func (tx *Tx) load(e entity) any {
	if v, ok := tx.staged[e.Name()]; ok {
		return v
	}
	return tx.s.state[e.Name()]
}

func (tx *Tx) stage(e entity, v any, op string) {
	name := e.Name()
	if _, ok := tx.staged[name]; !ok {
		tx.order = append(tx.order, name)
	}
	tx.staged[name] = v
	tx.ops = append(tx.ops, txOp{collection: name, op: op, result: Applied})
}

// note records an operation that matched nothing
func (tx *Tx) note(e entity, op string, result Result) {
	tx.ops = append(tx.ops, txOp{collection: e.Name(), op: op, result: result})
}
