package validates

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"github.com/roach88/modelkit/internal/model"
	"github.com/roach88/modelkit/internal/querysql"
	"github.com/roach88/modelkit/internal/scalar"
)

// Error messages, reported under the validated column.
const (
	MsgMissing   = "is missing"
	MsgEmpty     = "is empty"
	MsgBoolean   = "isnt a yes or no value"
	MsgFormat    = "doesn't match the expected format"
	MsgMaxLength = "has too many characters. The maximum length is %d."
	MsgTaken     = "has already been registered"
)

// column carries the validated column name.
type column string

func (c column) value(rec model.Record) (scalar.Value, bool) {
	v, ok := rec[string(c)]
	return v, ok && v != nil
}

func (c column) fail(message string) *model.RecordError {
	return &model.RecordError{Column: string(c), Message: message}
}

// NotNullValidator fails when the column is absent or NULL.
type NotNullValidator struct{ column }

// NotNull requires a value in col.
func NotNull(col string) *NotNullValidator { return &NotNullValidator{column(col)} }

func (v *NotNullValidator) Validate(_ context.Context, rec model.Record, _ *model.Definition, _ model.Counter) (*model.RecordError, error) {
	if _, ok := v.value(rec); !ok {
		return v.fail(MsgMissing), nil
	}
	return nil, nil
}

// NotEmptyValidator fails on empty text. Non-text values count as empty.
type NotEmptyValidator struct{ column }

// NotEmpty requires col to hold non-empty text when set.
func NotEmpty(col string) *NotEmptyValidator { return &NotEmptyValidator{column(col)} }

func (v *NotEmptyValidator) Validate(_ context.Context, rec model.Record, _ *model.Definition, _ model.Counter) (*model.RecordError, error) {
	val, ok := v.value(rec)
	if !ok {
		return nil, nil
	}
	if text, isText := val.(scalar.Text); !isText || text == "" {
		return v.fail(MsgEmpty), nil
	}
	return nil, nil
}

// IsBooleanValidator fails unless the column holds an Int32 of 0 or 1.
// Wider integer kinds fail even when they hold 0 or 1.
type IsBooleanValidator struct{ column }

// IsBoolean requires col to hold 0 or 1 when set.
func IsBoolean(col string) *IsBooleanValidator { return &IsBooleanValidator{column(col)} }

func (v *IsBooleanValidator) Validate(_ context.Context, rec model.Record, _ *model.Definition, _ model.Counter) (*model.RecordError, error) {
	val, ok := v.value(rec)
	if !ok {
		return nil, nil
	}
	if x, ok := val.(scalar.Int32); ok && (x == 0 || x == 1) {
		return nil, nil
	}
	return v.fail(MsgBoolean), nil
}

// MatchesValidator fails unless the whole text matches a pattern.
type MatchesValidator struct {
	column
	re *regexp.Regexp
}

// Matches requires col, when set, to be text matched in full by re.
func Matches(col string, re *regexp.Regexp) *MatchesValidator {
	return &MatchesValidator{column: column(col), re: regexp.MustCompile(`^(?:` + re.String() + `)$`)}
}

func (v *MatchesValidator) Validate(_ context.Context, rec model.Record, _ *model.Definition, _ model.Counter) (*model.RecordError, error) {
	val, ok := v.value(rec)
	if !ok {
		return nil, nil
	}
	if text, isText := val.(scalar.Text); !isText || !v.re.MatchString(string(text)) {
		return v.fail(MsgFormat), nil
	}
	return nil, nil
}

// Pattern compiles a "/expr/flags" literal. The only flag understood is
// "i" (case-insensitive). A string without slashes is compiled as is.
func Pattern(literal string) (*regexp.Regexp, error) {
	if len(literal) < 2 || literal[0] != '/' {
		return regexp.Compile(literal)
	}
	end := strings.LastIndexByte(literal, '/')
	if end == 0 {
		return nil, fmt.Errorf("pattern %q: missing closing slash", literal)
	}
	expr, flags := literal[1:end], literal[end+1:]
	for _, f := range flags {
		switch f {
		case 'i':
			expr = "(?i)" + expr
		default:
			return nil, fmt.Errorf("pattern %q: unsupported flag %q", literal, f)
		}
	}
	return regexp.Compile(expr)
}

// MustPattern is like Pattern but panics on error.
func MustPattern(literal string) *regexp.Regexp {
	re, err := Pattern(literal)
	if err != nil {
		panic(err)
	}
	return re
}

// MaxLengthValidator fails when text is longer than a limit.
type MaxLengthValidator struct {
	column
	max int
}

// MaxLength limits col, when set, to max characters. Length is counted in
// NFC-normalized runes, so composed and decomposed input measure the same.
func MaxLength(col string, max int) *MaxLengthValidator {
	return &MaxLengthValidator{column: column(col), max: max}
}

func (v *MaxLengthValidator) Validate(_ context.Context, rec model.Record, _ *model.Definition, _ model.Counter) (*model.RecordError, error) {
	val, ok := v.value(rec)
	if !ok {
		return nil, nil
	}
	text, isText := val.(scalar.Text)
	if !isText || utf8.RuneCountInString(norm.NFC.String(string(text))) > v.max {
		return v.fail(fmt.Sprintf(MsgMaxLength, v.max)), nil
	}
	return nil, nil
}

// Conditional narrows a uniqueness check with an extra SQL predicate and
// the parameters it binds by name.
type Conditional struct {
	Where  string
	Params model.Record
}

// Scope computes the Conditional for a record. A nil result adds nothing.
type Scope func(rec model.Record) *Conditional

// IsUniqueValidator fails when another row already holds the value.
type IsUniqueValidator struct {
	column
	scope Scope
}

// IsUnique requires col, when set, to be unique in the table. Rows with the
// record's own primary key are ignored. scope, if given, restricts the rows
// compared against.
func IsUnique(col string, scope ...Scope) *IsUniqueValidator {
	v := &IsUniqueValidator{column: column(col)}
	if len(scope) > 0 {
		v.scope = scope[0]
	}
	return v
}

func (v *IsUniqueValidator) Validate(ctx context.Context, rec model.Record, def *model.Definition, db model.Counter) (*model.RecordError, error) {
	val, ok := v.value(rec)
	if !ok {
		return nil, nil
	}

	col, pkey := string(v.column), def.PrimaryKey()
	where := col + " = :" + col
	params := map[string]any{col: def.Encode(val)}

	if id, ok := rec[pkey]; ok && id != nil {
		where = querysql.Conjoin(where, pkey+" != :"+pkey)
		params[pkey] = def.Encode(id)
	}
	if v.scope != nil {
		if cond := v.scope(rec); cond != nil {
			where = querysql.Conjoin(where, cond.Where)
			for name, p := range cond.Params {
				params[name] = def.Encode(p)
			}
		}
	}

	n, err := db.CountWhere(ctx, querysql.CountWhere(def.Table(), where), params)
	if err != nil {
		return nil, fmt.Errorf("uniqueness of %s.%s: %w", def.Table(), col, err)
	}
	if n > 0 {
		return v.fail(MsgTaken), nil
	}
	return nil, nil
}

// Condition selects the records a validator applies to.
type Condition func(rec model.Record) bool

// IfValidator runs a validator only for records matching a condition.
type IfValidator struct {
	when Condition
	then model.Validator
}

// If applies v only to records for which when reports true.
func If(when Condition, v model.Validator) *IfValidator {
	return &IfValidator{when: when, then: v}
}

func (v *IfValidator) Validate(ctx context.Context, rec model.Record, def *model.Definition, db model.Counter) (*model.RecordError, error) {
	if !v.when(rec) {
		return nil, nil
	}
	return v.then.Validate(ctx, rec, def, db)
}
