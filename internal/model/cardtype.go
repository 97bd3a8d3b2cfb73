package model

// CardType is a canonical card network name.
type CardType string

const (
	CardVisa       CardType = "VISA"
	CardMastercard CardType = "MASTERCARD"
	CardNAPS       CardType = "NAPS"
	CardGCCNET     CardType = "GCCNET"
	CardAmex       CardType = "AMEX"
	CardDiners     CardType = "DINERS"
	CardJCB        CardType = "JCB"
	CardUnknown    CardType = "UNKNOWN"
)

// MandatoryCardTypes always appear in categorization output, even when empty.
var MandatoryCardTypes = []CardType{CardVisa, CardMastercard, CardNAPS, CardGCCNET}

// ExcludedCardTypes are dropped from categorization but kept on raw records.
var ExcludedCardTypes = []CardType{CardAmex, CardDiners, CardJCB}

// DefaultGCCNETSuffixes are card-number endings of GCCNET-issued cards that
// print under a VISA or MASTERCARD header.
var DefaultGCCNETSuffixes = []string{"0580", "8628", "8134"}
