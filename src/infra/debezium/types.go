package debezium

// CDCEvent represents raw CDC event from Debezium
type CDCEvent struct {
	Before    map[string]any `json:"before"`
	After     map[string]any `json:"after"`
	Source    CDCSource      `json:"source"`
	Operation string         `json:"op"` // c=create, u=update, d=delete, r=read
	TsMs      int64          `json:"ts_ms"`
}

type CDCSource struct {
	Connector string `json:"connector"`
	Name      string `json:"name"`
	TsMs      int64  `json:"ts_ms"`
	Snapshot  string `json:"snapshot"`
	DB        string `json:"db"`
	Schema    string `json:"schema"`
	Table     string `json:"table"`
	TxID      int64  `json:"txId"`
	LSN       int64  `json:"lsn"`
}

const (
	OperationCreate = "c"
	OperationUpdate = "u"
	OperationDelete = "d"
	OperationRead   = "r"
)

// Row devolve a linha que descreve o estado relevante do evento: o before
// nos deletes, o after nos demais.
func (e *CDCEvent) Row() map[string]any {
	if e.Operation == OperationDelete {
		return e.Before
	}
	return e.After
}
