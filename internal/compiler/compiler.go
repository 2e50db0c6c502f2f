package compiler

import (
	"fmt"
	"strings"
	"time"

	"er_diagram/internal/apperrors"
	"er_diagram/internal/models"
)

// DefaultDatabase is the schema every generated script creates and uses.
const DefaultDatabase = "er_diagram"

const generatedOnFormat = "2006-01-02 15:04:05"

// Variant selects how tables and columns are created.
type Variant int

const (
	// VariantSave regenerates without touching existing data: guarded
	// creates and guarded column adds.
	VariantSave Variant = iota + 1
	// VariantExport drops and recreates every table and appends sample rows.
	VariantExport
)

func (v Variant) String() string {
	switch v {
	case VariantSave:
		return "save"
	case VariantExport:
		return "export"
	default:
		return fmt.Sprintf("variant(%d)", int(v))
	}
}

func (v Variant) valid() bool {
	return v == VariantSave || v == VariantExport
}

// ParseVariant accepts "save" and "export" (case insensitive).
func ParseVariant(s string) (Variant, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "save":
		return VariantSave, nil
	case "export":
		return VariantExport, nil
	default:
		return 0, apperrors.InvalidInput("unknown variant %q: must be 'save' or 'export'", s)
	}
}

type options struct {
	now        func() time.Time
	database   string
	sampleData bool
}

type Option func(*options)

// WithClock sets the clock used for the header timestamp.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

func WithDatabase(name string) Option {
	return func(o *options) {
		if name != "" {
			o.database = name
		}
	}
}

// WithSampleData toggles the INSERT rows of the export variant. It has no
// effect on VariantSave.
func WithSampleData(enabled bool) Option {
	return func(o *options) { o.sampleData = enabled }
}

type relationship struct {
	source   string
	target   string
	fkColumn string
}

type compilation struct {
	opts      options
	variant   Variant
	diagram   *models.Diagram
	sanitizer *Sanitizer
	tables    map[string]string
	pending   []relationship
	script    *Script
	schema    map[string]*models.Table
}

// Compile translates d into an ordered DDL script. Statement order follows
// entity and connection order. Empty names, dangling connections and
// unsupported shape pairings are defaulted or skipped; only a nil diagram or
// an unknown variant is an error.
func Compile(d *models.Diagram, variant Variant, opts ...Option) (*Script, error) {
	if d == nil {
		return nil, apperrors.InvalidInput("diagram is required")
	}
	if !variant.valid() {
		return nil, apperrors.InvalidInput("unknown compile variant %s", variant)
	}
	o := options{
		now:        time.Now,
		database:   DefaultDatabase,
		sampleData: true,
	}
	for _, opt := range opts {
		opt(&o)
	}

	c := &compilation{
		opts:      o,
		variant:   variant,
		diagram:   d,
		sanitizer: NewSanitizer(),
		tables:    make(map[string]string),
		script:    &Script{Variant: variant},
		schema:    make(map[string]*models.Table),
	}
	c.reserveNames()
	c.header()
	c.createTables()
	c.processConnections()
	c.addForeignKeys()
	if variant == VariantExport && o.sampleData {
		c.addSampleData()
	}
	seen := make(map[string]bool)
	for _, table := range c.script.Tables {
		if !seen[table] {
			seen[table] = true
			c.script.Schema = append(c.script.Schema, *c.schema[table])
		}
	}
	return c.script, nil
}

func (c *compilation) header() {
	c.script.add(Statement{
		Kind:    KindHeader,
		Comment: "SQL Schema generated from ER Diagram\nGenerated on: " + c.opts.now().Format(generatedOnFormat),
	})
	db := quoteIdentifier(c.opts.database)
	c.script.add(Statement{Kind: KindCreateDatabase, SQL: "CREATE DATABASE IF NOT EXISTS " + db + ";"})
	c.script.add(Statement{Kind: KindUseDatabase, SQL: "USE " + db + ";"})
}

// tableNameFor uses the entity name, falling back to the id with the
// editor's "entity" prefix removed.
func (c *compilation) tableNameFor(e models.Entity) string {
	name := e.Name
	if name == "" {
		suffix := ""
		if len(e.ID) > 6 {
			suffix = e.ID[6:]
		}
		name = "entity_" + suffix
	}
	return c.sanitizer.Identifier(name, TablePrefix)
}

// reserveNames registers every user-given name up front so fallback names
// never collide with a label that appears later in the diagram.
func (c *compilation) reserveNames() {
	for _, e := range c.diagram.Entities {
		switch e.Type {
		case models.EntityRectangle:
			c.sanitizer.Reserve(e.Name, TablePrefix)
		case models.EntityEllipse:
			c.sanitizer.Reserve(e.Name, ColumnPrefix)
		}
	}
}

func (c *compilation) createTables() {
	for _, e := range c.diagram.Entities {
		if e.Type != models.EntityRectangle {
			continue
		}
		if _, exists := c.tables[e.ID]; exists {
			continue
		}
		table := c.tableNameFor(e)
		c.tables[e.ID] = table
		c.script.Tables = append(c.script.Tables, table)
		if _, ok := c.schema[table]; !ok {
			c.schema[table] = newTableSchema(table)
		}

		comment := "Table: " + table
		create := "CREATE TABLE IF NOT EXISTS "
		if c.variant == VariantExport {
			c.script.add(Statement{
				Kind:    KindDropTable,
				Table:   table,
				Comment: comment,
				SQL:     "DROP TABLE IF EXISTS " + quoteIdentifier(table) + ";",
			})
			comment = ""
			create = "CREATE TABLE "
		}
		c.script.add(Statement{
			Kind:    KindCreateTable,
			Table:   table,
			Comment: comment,
			SQL:     create + quoteIdentifier(table) + " (\n" + baselineColumns + "\n) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;",
		})
	}
}

func newTableSchema(name string) *models.Table {
	return &models.Table{
		Name: name,
		Columns: []models.Column{
			{Name: "id", DataType: "INT"},
			{Name: "name", DataType: "VARCHAR(255)"},
			{Name: "description", DataType: "TEXT", Nullable: true},
			{Name: "created_at", DataType: "TIMESTAMP", Nullable: true},
			{Name: "updated_at", DataType: "TIMESTAMP", Nullable: true},
		},
		PrimaryKeys: []string{"id"},
	}
}

// addSchemaColumn records column on table unless a column of that name is
// already there, in which case the script's ALTER would fail or be skipped.
func (c *compilation) addSchemaColumn(table string, column models.Column) bool {
	t := c.schema[table]
	if t.HasColumn(column.Name) {
		return false
	}
	t.Columns = append(t.Columns, column)
	return true
}

const baselineColumns = "    `id` INT AUTO_INCREMENT PRIMARY KEY,\n" +
	"    `name` VARCHAR(255) NOT NULL,\n" +
	"    `description` TEXT,\n" +
	"    `created_at` TIMESTAMP DEFAULT CURRENT_TIMESTAMP,\n" +
	"    `updated_at` TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP"

func (c *compilation) addColumnClause() string {
	if c.variant == VariantSave {
		return "ADD COLUMN IF NOT EXISTS "
	}
	return "ADD COLUMN "
}

func (c *compilation) processConnections() {
	for _, conn := range c.diagram.Connections {
		source, ok := c.diagram.FindEntity(conn.Source)
		if !ok {
			continue
		}
		target, ok := c.diagram.FindEntity(conn.Target)
		if !ok {
			continue
		}

		switch {
		case source.Type == models.EntityRectangle && target.Type == models.EntityRectangle:
			sourceTable, ok := c.tables[source.ID]
			if !ok {
				continue
			}
			targetTable, ok := c.tables[target.ID]
			if !ok {
				continue
			}
			c.pending = append(c.pending, relationship{
				source:   sourceTable,
				target:   targetTable,
				fkColumn: strings.ToLower(targetTable) + "_id",
			})
		case source.Type == models.EntityRectangle && target.Type == models.EntityEllipse:
			table, ok := c.tables[source.ID]
			if !ok {
				continue
			}
			column := c.sanitizer.Identifier(target.Name, ColumnPrefix)
			c.addSchemaColumn(table, models.Column{Name: column, DataType: "VARCHAR(255)", Nullable: true})
			c.script.add(Statement{
				Kind:    KindAddColumn,
				Table:   table,
				Comment: "Add attribute to " + table,
				SQL:     "ALTER TABLE " + quoteIdentifier(table) + "\n    " + c.addColumnClause() + quoteIdentifier(column) + " VARCHAR(255);",
			})
		}
		// Diamonds and reversed pairings carry no schema meaning yet.
	}
}

func (c *compilation) addForeignKeys() {
	if len(c.pending) == 0 {
		return
	}
	c.script.add(Statement{Kind: KindComment, Comment: "Relationships"})
	for _, rel := range c.pending {
		constraint := "fk_" + rel.source + "_" + rel.target
		if c.addSchemaColumn(rel.source, models.Column{Name: rel.fkColumn, DataType: "INT", Nullable: true}) {
			t := c.schema[rel.source]
			t.ForeignKeys = append(t.ForeignKeys, models.ForeignKey{
				ConstraintName: constraint,
				FromColumn:     rel.fkColumn,
				ToTable:        rel.target,
				ToColumn:       "id",
			})
		}

		var sql strings.Builder
		sql.WriteString("ALTER TABLE ")
		sql.WriteString(quoteIdentifier(rel.source))
		sql.WriteString("\n    ")
		sql.WriteString(c.addColumnClause())
		sql.WriteString(quoteIdentifier(rel.fkColumn))
		sql.WriteString(" INT,\n    ADD CONSTRAINT ")
		sql.WriteString(quoteIdentifier(constraint))
		sql.WriteString("\n    FOREIGN KEY (")
		sql.WriteString(quoteIdentifier(rel.fkColumn))
		sql.WriteString(") REFERENCES ")
		sql.WriteString(quoteIdentifier(rel.target))
		sql.WriteString("(`id`);")
		c.script.add(Statement{Kind: KindForeignKey, Table: rel.source, SQL: sql.String()})
	}
}

func (c *compilation) addSampleData() {
	for i, table := range c.script.Tables {
		st := Statement{
			Kind:  KindInsert,
			Table: table,
			SQL: fmt.Sprintf("INSERT INTO %s (`name`, `description`) VALUES\n"+
				"    ('Sample %[2]s 1', 'Description for sample %[2]s 1'),\n"+
				"    ('Sample %[2]s 2', 'Description for sample %[2]s 2');",
				quoteIdentifier(table), table),
		}
		if i == 0 {
			st.Comment = "Sample data"
		}
		c.script.add(st)
	}
}

func quoteIdentifier(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}
