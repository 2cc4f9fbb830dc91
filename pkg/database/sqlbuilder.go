package database

import (
	"github.com/huandu/go-sqlbuilder"
)

func NewSelectBuilder() *sqlbuilder.SelectBuilder {
	return sqlbuilder.PostgreSQL.NewSelectBuilder()
}

func NewInsertBuilder() *sqlbuilder.InsertBuilder {
	return sqlbuilder.PostgreSQL.NewInsertBuilder()
}

func NewDeleteBuilder() *sqlbuilder.DeleteBuilder {
	return sqlbuilder.PostgreSQL.NewDeleteBuilder()
}
