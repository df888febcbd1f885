package diag

import (
	"fmt"
)

type Code uint16

const (
	UnknownCode Code = 0

	// Syntax (parser -> Junk annotations)
	SynInfo                Code = 1000
	SynExpectedToken       Code = 1001
	SynExpectedEntry       Code = 1002
	SynExpectedMessageID   Code = 1003
	SynExpectedTermID      Code = 1004
	SynMissingValue        Code = 1005
	SynMissingTermValue    Code = 1006
	SynUnclosedPlaceable   Code = 1007
	SynUnterminatedString  Code = 1008
	SynInvalidEscape       Code = 1009
	SynExpectedExpression  Code = 1010
	SynExpectedVariantKey  Code = 1011
	SynMissingVariants     Code = 1012
	SynMissingDefault      Code = 1013
	SynMultipleDefaults    Code = 1014
	SynExpectedLiteral     Code = 1015
	SynBadNumber           Code = 1016
	SynTokenTooLong        Code = 1017
	SynDepthExceeded       Code = 1018
	SynErrorLimitReached   Code = 1019
	SynExpectedAttributeID Code = 1020
	SynNamedArgLiteral     Code = 1021
	SynCallArgNotAllowed   Code = 1022
	SynTermAttrAsSelector  Code = 1023
	SynMsgAttrRequired     Code = 1024

	// Semantic (validator)
	SemInfo                 Code = 2000
	SemDuplicateMessage     Code = 2001
	SemDuplicateTerm        Code = 2002
	SemMessageNoValue       Code = 2003
	SemTermNoValue          Code = 2004
	SemUndefinedMessageRef  Code = 2005
	SemUndefinedTermRef     Code = 2006
	SemCyclicReference      Code = 2007
	SemDuplicateNamedArg    Code = 2008
	SemEmptyVariantList     Code = 2009
	SemMissingDefaultVar    Code = 2010
	SemMultipleDefaultVars  Code = 2011
	SemTermPositionalArgs   Code = 2012
	SemUndefinedAttribute   Code = 2013
	SemValidationDepthLimit Code = 2014

	// Resolution (resolver)
	ResInfo             Code = 3000
	ResMissingVariable  Code = 3001
	ResMissingMessage   Code = 3002
	ResMissingTerm      Code = 3003
	ResMissingAttribute Code = 3004
	ResMissingFunction  Code = 3005
	ResCyclicReference  Code = 3006
	ResDepthExceeded    Code = 3007
	ResBudgetExceeded   Code = 3008
	ResFormattingFailed Code = 3009
	ResNoValue          Code = 3010
	ResBadSelector      Code = 3011

	// Cache / integrity
	CacheInfo           Code = 4000
	CacheChecksumBroken Code = 4001
	CacheWriteConflict  Code = 4002
	CacheUncachableArgs Code = 4003

	// I/O (CLI only)
	IOLoadFileError Code = 5001
)

var codeDescription = map[Code]string{
	UnknownCode: "Unknown error",

	SynInfo:                "Syntax information",
	SynExpectedToken:       "Expected token",
	SynExpectedEntry:       "Expected message, term, or comment",
	SynExpectedMessageID:   "Expected message identifier",
	SynExpectedTermID:      "Expected term identifier",
	SynMissingValue:        "Expected message value or attributes",
	SynMissingTermValue:    "Term must have a value",
	SynUnclosedPlaceable:   "Unclosed placeable",
	SynUnterminatedString:  "Unterminated string literal",
	SynInvalidEscape:       "Invalid escape sequence",
	SynExpectedExpression:  "Expected expression",
	SynExpectedVariantKey:  "Expected variant key",
	SynMissingVariants:     "Select expression has no variants",
	SynMissingDefault:      "Select expression has no default variant",
	SynMultipleDefaults:    "Select expression has multiple default variants",
	SynExpectedLiteral:     "Expected literal",
	SynBadNumber:           "Malformed number literal",
	SynTokenTooLong:        "Token exceeds maximum length",
	SynDepthExceeded:       "Maximum nesting depth exceeded",
	SynErrorLimitReached:   "Parse error limit reached, rest of input skipped",
	SynExpectedAttributeID: "Expected attribute identifier",
	SynNamedArgLiteral:     "Named argument value must be a literal",
	SynCallArgNotAllowed:   "Argument not allowed here",
	SynTermAttrAsSelector:  "Message attributes cannot be select expression selectors",
	SynMsgAttrRequired:     "Expected attribute after message without value",

	SemInfo:                 "Semantic information",
	SemDuplicateMessage:     "Duplicate message identifier",
	SemDuplicateTerm:        "Duplicate term identifier",
	SemMessageNoValue:       "Message has neither value nor attributes",
	SemTermNoValue:          "Term has no value",
	SemUndefinedMessageRef:  "Reference to undefined message",
	SemUndefinedTermRef:     "Reference to undefined term",
	SemCyclicReference:      "Cyclic reference chain",
	SemDuplicateNamedArg:    "Duplicate named argument",
	SemEmptyVariantList:     "Select expression has no variants",
	SemMissingDefaultVar:    "Select expression has no default variant",
	SemMultipleDefaultVars:  "Select expression has multiple default variants",
	SemTermPositionalArgs:   "Positional arguments to a term reference are ignored",
	SemUndefinedAttribute:   "Reference to undefined attribute",
	SemValidationDepthLimit: "Validation depth limit reached",

	ResInfo:             "Resolution information",
	ResMissingVariable:  "Unknown variable",
	ResMissingMessage:   "Unknown message",
	ResMissingTerm:      "Unknown term",
	ResMissingAttribute: "Unknown attribute",
	ResMissingFunction:  "Unknown function",
	ResCyclicReference:  "Cyclic reference",
	ResDepthExceeded:    "Maximum resolution depth exceeded",
	ResBudgetExceeded:   "Maximum output size exceeded",
	ResFormattingFailed: "Function failed to format value",
	ResNoValue:          "Entry has no value to format",
	ResBadSelector:      "Selector did not resolve to a selectable value",

	CacheInfo:           "Cache information",
	CacheChecksumBroken: "Cache entry failed checksum verification",
	CacheWriteConflict:  "Cache entry already exists",
	CacheUncachableArgs: "Arguments are not cachable",

	IOLoadFileError: "I/O load file error",
}

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("SYN%04d", ic)
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("SEM%04d", ic)
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("RES%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("CHE%04d", ic)
	case ic >= 5000 && ic < 6000:
		return fmt.Sprintf("IO%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[Code(0)]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
