package tx

import "fmt"

// Result represents a transaction result code
type Result int

// Transaction result codes, grouped by category. Only tesSUCCESS commits
// anything to the ledger: every other code leaves state untouched.
const (
	// tesSUCCESS
	TesSUCCESS Result = 0

	// tec codes: the transaction was well formed but the ledger state
	// refused it (100-199)
	TecINSUFFICIENT_SUPPLY Result = 100
	TecWALLET_CAP_EXCEEDED Result = 101
	TecMARKET_NOT_ACTIVE   Result = 102
	TecINSUFFICIENT_FUNDS  Result = 103
	TecALREADY_WITHDRAWN   Result = 104
	TecUNAUTHORIZED        Result = 105
	TecNO_ENTRY            Result = 106
	TecMARKET_WRONG_STATE  Result = 107
	TecNOT_MUTABLE         Result = 108
	TecDUPLICATE           Result = 109
	TecMINT_MISMATCH       Result = 110
	TecRESOURCE_IN_USE     Result = 111

	// tef codes: failure that signals a bug or a bad signature (-199 to -100)
	TefFAILURE             Result = -199
	TefINTERNAL            Result = -192
	TefBAD_SIGNATURE       Result = -186
	TefPAST_SEQ            Result = -190
	TefINSUFFICIENT_ESCROW Result = -170

	// tem codes: malformed transaction (-299 to -200)
	TemMALFORMED          Result = -299
	TemINVALID_PARAMETERS Result = -277
	TemBAD_SIGNER         Result = -272
	TemUNKNOWN_TYPE       Result = -260

	// tel codes: local failure, nothing was attempted (-399 to -300)
	TelFAILED_PROCESSING Result = -395

	// ter codes: retry may succeed later (-99 to -1)
	TerNO_ACCOUNT Result = -96
	TerPRE_SEQ    Result = -92
)

// String returns the result code name
func (r Result) String() string {
	switch r {
	case TesSUCCESS:
		return "tesSUCCESS"
	case TecINSUFFICIENT_SUPPLY:
		return "tecINSUFFICIENT_SUPPLY"
	case TecWALLET_CAP_EXCEEDED:
		return "tecWALLET_CAP_EXCEEDED"
	case TecMARKET_NOT_ACTIVE:
		return "tecMARKET_NOT_ACTIVE"
	case TecINSUFFICIENT_FUNDS:
		return "tecINSUFFICIENT_FUNDS"
	case TecALREADY_WITHDRAWN:
		return "tecALREADY_WITHDRAWN"
	case TecUNAUTHORIZED:
		return "tecUNAUTHORIZED"
	case TecNO_ENTRY:
		return "tecNO_ENTRY"
	case TecMARKET_WRONG_STATE:
		return "tecMARKET_WRONG_STATE"
	case TecNOT_MUTABLE:
		return "tecNOT_MUTABLE"
	case TecDUPLICATE:
		return "tecDUPLICATE"
	case TecMINT_MISMATCH:
		return "tecMINT_MISMATCH"
	case TecRESOURCE_IN_USE:
		return "tecRESOURCE_IN_USE"
	case TefFAILURE:
		return "tefFAILURE"
	case TefINTERNAL:
		return "tefINTERNAL"
	case TefBAD_SIGNATURE:
		return "tefBAD_SIGNATURE"
	case TefPAST_SEQ:
		return "tefPAST_SEQ"
	case TefINSUFFICIENT_ESCROW:
		return "tefINSUFFICIENT_ESCROW"
	case TemMALFORMED:
		return "temMALFORMED"
	case TemINVALID_PARAMETERS:
		return "temINVALID_PARAMETERS"
	case TemBAD_SIGNER:
		return "temBAD_SIGNER"
	case TemUNKNOWN_TYPE:
		return "temUNKNOWN_TYPE"
	case TelFAILED_PROCESSING:
		return "telFAILED_PROCESSING"
	case TerNO_ACCOUNT:
		return "terNO_ACCOUNT"
	case TerPRE_SEQ:
		return "terPRE_SEQ"
	default:
		return fmt.Sprintf("Unknown(%d)", int(r))
	}
}

// resultByName is the reverse of String, used when parsing validation errors.
var resultByName = func() map[string]Result {
	m := make(map[string]Result)
	for _, r := range []Result{
		TesSUCCESS,
		TecINSUFFICIENT_SUPPLY, TecWALLET_CAP_EXCEEDED, TecMARKET_NOT_ACTIVE,
		TecINSUFFICIENT_FUNDS, TecALREADY_WITHDRAWN, TecUNAUTHORIZED, TecNO_ENTRY,
		TecMARKET_WRONG_STATE, TecNOT_MUTABLE, TecDUPLICATE, TecMINT_MISMATCH,
		TecRESOURCE_IN_USE,
		TefFAILURE, TefINTERNAL, TefBAD_SIGNATURE, TefPAST_SEQ, TefINSUFFICIENT_ESCROW,
		TemMALFORMED, TemINVALID_PARAMETERS, TemBAD_SIGNER, TemUNKNOWN_TYPE,
		TelFAILED_PROCESSING,
		TerNO_ACCOUNT, TerPRE_SEQ,
	} {
		m[r.String()] = r
	}
	return m
}()

// ResultFromName returns the result code with the given name.
func ResultFromName(name string) (Result, bool) {
	r, ok := resultByName[name]
	return r, ok
}

// IsSuccess returns true if the result indicates success
func (r Result) IsSuccess() bool {
	return r == TesSUCCESS
}

// IsTec returns true if this is a tec (rejected by ledger state) code
func (r Result) IsTec() bool {
	return r >= 100 && r < 200
}

// IsTef returns true if this is a tef (failure) code
func (r Result) IsTef() bool {
	return r >= -199 && r <= -100
}

// IsTel returns true if this is a tel (local error) code
func (r Result) IsTel() bool {
	return r >= -399 && r <= -300
}

// IsTem returns true if this is a tem (malformed) code
func (r Result) IsTem() bool {
	return r >= -299 && r <= -200
}

// IsTer returns true if this is a ter (retry) code
func (r Result) IsTer() bool {
	return r >= -99 && r <= -1
}

// ShouldRetry returns true if resubmitting the same transaction later may succeed
func (r Result) ShouldRetry() bool {
	return r.IsTer()
}

// IsFatal returns true for codes that indicate a broken ledger invariant.
// These must never be retried.
func (r Result) IsFatal() bool {
	return r == TefINSUFFICIENT_ESCROW || r == TefINTERNAL
}

// Message returns a human-readable message for the result
func (r Result) Message() string {
	switch r {
	case TesSUCCESS:
		return "The transaction was applied."
	case TecINSUFFICIENT_SUPPLY:
		return "Sold out: the vault has no unit left."
	case TecWALLET_CAP_EXCEEDED:
		return "This wallet already bought the maximum number of pieces."
	case TecMARKET_NOT_ACTIVE:
		return "The market is not open for purchases."
	case TecINSUFFICIENT_FUNDS:
		return "The payment account cannot cover the price."
	case TecALREADY_WITHDRAWN:
		return "Funds were already withdrawn for this payee."
	case TecUNAUTHORIZED:
		return "The signer is not allowed to perform this operation."
	case TecNO_ENTRY:
		return "A referenced ledger entry does not exist."
	case TecMARKET_WRONG_STATE:
		return "The market is in the wrong state for this operation."
	case TecNOT_MUTABLE:
		return "The market cannot be changed."
	case TecDUPLICATE:
		return "The entry to create already exists."
	case TecMINT_MISMATCH:
		return "Token accounts do not share the expected mint."
	case TecRESOURCE_IN_USE:
		return "The selling resource already backs a market."
	case TefINSUFFICIENT_ESCROW:
		return "Escrow balance is below recorded proceeds."
	case TefINTERNAL:
		return "Internal error."
	case TefBAD_SIGNATURE:
		return "Invalid signature."
	case TefPAST_SEQ:
		return "Sequence number has already passed."
	case TemMALFORMED:
		return "The transaction is ill-formed."
	case TemINVALID_PARAMETERS:
		return "Invalid parameters."
	case TerNO_ACCOUNT:
		return "The source account does not exist."
	case TerPRE_SEQ:
		return "Missing/inapplicable prior transaction."
	default:
		return r.String()
	}
}
