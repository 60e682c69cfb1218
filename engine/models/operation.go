package models

// ============================================================================
// OPERATION - store-agnostic action built from a Statement
// ============================================================================

// Operation is one of [Find], [InsertOne], [UpdateMany] or [DeleteMany].
type Operation interface {
	// Kind returns the statement kind the operation was built from.
	Kind() Kind
	// CollectionName returns the target collection.
	CollectionName() string

	operation()
}

// Find selects the documents of Collection matching every comparison of Filter.
type Find struct {
	Collection string
	Filter     Predicate
}

// InsertOne inserts Document into Collection.
type InsertOne struct {
	Collection string
	Document   []Field
}

// UpdateMany sets the Update fields on every document of Collection matching Filter.
// Filter holds equalities only.
type UpdateMany struct {
	Collection string
	Filter     Predicate
	Update     []Field
}

// DeleteMany removes every document of Collection matching Filter.
// Filter holds equalities only.
type DeleteMany struct {
	Collection string
	Filter     Predicate
}

func (Find) Kind() Kind       { return Select }
func (InsertOne) Kind() Kind  { return Insert }
func (UpdateMany) Kind() Kind { return Update }
func (DeleteMany) Kind() Kind { return Delete }

func (o Find) CollectionName() string       { return o.Collection }
func (o InsertOne) CollectionName() string  { return o.Collection }
func (o UpdateMany) CollectionName() string { return o.Collection }
func (o DeleteMany) CollectionName() string { return o.Collection }

func (Find) operation()       {}
func (InsertOne) operation()  {}
func (UpdateMany) operation() {}
func (DeleteMany) operation() {}
