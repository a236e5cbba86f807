package interfile

// Value is a header value. Text is its only implementation: every record
// this tool rewrites names a file.
type Value interface {
	// String renders the value as it appears after ":=".
	String() string
	isValue()
}

// Text is a string value written verbatim.
type Text string

func (v Text) String() string { return string(v) }

func (Text) isValue() {}
