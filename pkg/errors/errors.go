package errors

import (
	"encoding/json"
	goerrors "errors"
	"fmt"

	log "github.com/sirupsen/logrus"
	grpccodes "google.golang.org/grpc/codes"
)

// Code is the type representing a namespace error code.
type Code[MT any] struct {
	Code     uint16
	Name     string
	GrpcCode grpccodes.Code
}

// New creates a new error with the given code and the message
func (c Code[MT]) New(msg string, args ...any) TypedError[MT] {
	return &ErrorImpl[MT]{
		code:  c,
		cause: fmt.Errorf(msg, args...),
	}
}

// Wrap creates a new Error with the given code and the cause error
func (c Code[MT]) Wrap(cause error) TypedError[MT] {
	return &ErrorImpl[MT]{
		code:  c,
		cause: cause,
	}
}

// Is reports whether err, or any error it wraps, carries this code.
func (c Code[MT]) Is(err error) bool {
	var e Error
	if !goerrors.As(err, &e) {
		return false
	}
	return e.Code() == c.Code
}

func (c Code[MT]) String() string {
	return fmt.Sprintf("%s (%d)", c.Name, c.Code)
}

type Error interface {
	error
	Log() *log.Entry
	Code() uint16
	CodeName() string
	GrpcCode() grpccodes.Code
	Metadata() map[string]string
}

type TypedError[MT any] interface {
	Error
	WithMetadata(MT) TypedError[MT]
}

// ErrorImpl is the default concrete implementation of TypedError.
type ErrorImpl[MT any] struct {
	code     Code[MT]
	cause    error
	metadata MT
}

func (e *ErrorImpl[MT]) Log() *log.Entry {
	return log.WithField("name", e.code.Name).
		WithField("code", e.code.Code).
		WithField("metadata", e.metadata)
}

func (e *ErrorImpl[MT]) Metadata() map[string]string {
	metadata := make(map[string]string)
	buf, err := json.Marshal(e.metadata)
	if err != nil {
		return metadata
	}
	var genericMap map[string]any
	if err := json.Unmarshal(buf, &genericMap); err != nil {
		return metadata
	}
	for k, v := range genericMap {
		if v == nil {
			metadata[k] = ""
			continue
		}
		metadata[k] = fmt.Sprintf("%v", v)
	}
	return metadata
}

func (e *ErrorImpl[MT]) GrpcCode() grpccodes.Code {
	return e.code.GrpcCode
}

func (e *ErrorImpl[MT]) Code() uint16 {
	return e.code.Code
}

func (e *ErrorImpl[MT]) CodeName() string {
	return e.code.Name
}

func (e *ErrorImpl[MT]) Error() string {
	return fmt.Sprintf("%s: %s", e.code.String(), e.cause.Error())
}

func (e *ErrorImpl[MT]) Unwrap() error {
	return e.cause
}

func (e *ErrorImpl[MT]) WithMetadata(metadata MT) TypedError[MT] {
	e.metadata = metadata
	return e
}

type AssetMetadata struct {
	AssetId uint64 `json:"asset_id"`
}

type ItemMetadata struct {
	ItemId uint64 `json:"item_id"`
	State  string `json:"state,omitempty"`
}

type PermissionMetadata struct {
	Account   string `json:"account"`
	Operation string `json:"operation,omitempty"`
	Role      string `json:"role,omitempty"`
}

type OwnerMetadata struct {
	ItemId uint64 `json:"item_id"`
	Owner  string `json:"owner"`
	Caller string `json:"caller"`
}

type FundsMetadata struct {
	Account  string `json:"account"`
	Required string `json:"required"`
	Balance  string `json:"balance"`
}

type AuctionMetadata struct {
	ItemId  uint64 `json:"item_id"`
	EndTime int64  `json:"end_time"`
	Now     int64  `json:"now"`
}

type BidMetadata struct {
	ItemId  uint64 `json:"item_id"`
	Bid     string `json:"bid"`
	BestBid string `json:"best_bid"`
}

type ChainMetadata struct {
	ChainId      uint64 `json:"chain_id"`
	LocalChainId uint64 `json:"local_chain_id,omitempty"`
}

type SwapMetadata struct {
	Digest string `json:"digest"`
	Status string `json:"status,omitempty"`
}

type ValidatorMetadata struct {
	Digest string `json:"digest"`
	Signer string `json:"signer,omitempty"`
}

type RoyaltyMetadata struct {
	AssetId   uint64 `json:"asset_id"`
	Recipient string `json:"recipient"`
}

var INTERNAL_ERROR = Code[map[string]any]{0, "INTERNAL_ERROR", grpccodes.Internal}
var INVALID_ARGUMENT = Code[map[string]any]{1, "INVALID_ARGUMENT", grpccodes.InvalidArgument}
var ASSET_NOT_FOUND = Code[AssetMetadata]{2, "ASSET_NOT_FOUND", grpccodes.NotFound}
var ITEM_NOT_FOUND = Code[ItemMetadata]{3, "ITEM_NOT_FOUND", grpccodes.NotFound}
var AUCTION_NOT_FOUND = Code[ItemMetadata]{4, "AUCTION_NOT_FOUND", grpccodes.NotFound}
var FORBIDDEN = Code[PermissionMetadata]{5, "FORBIDDEN", grpccodes.PermissionDenied}
var NOT_OWNER = Code[OwnerMetadata]{6, "NOT_OWNER", grpccodes.PermissionDenied}
var INVALID_STATE = Code[ItemMetadata]{7, "INVALID_STATE", grpccodes.FailedPrecondition}

var INSUFFICIENT_FUNDS = Code[FundsMetadata]{
	8,
	"INSUFFICIENT_FUNDS",
	grpccodes.FailedPrecondition,
}
var AUCTION_ENDED = Code[AuctionMetadata]{9, "AUCTION_ENDED", grpccodes.FailedPrecondition}
var BID_TOO_LOW = Code[BidMetadata]{10, "BID_TOO_LOW", grpccodes.InvalidArgument}
var WRONG_CHAIN = Code[ChainMetadata]{11, "WRONG_CHAIN", grpccodes.InvalidArgument}

var CHAIN_NOT_ALLOWED = Code[ChainMetadata]{
	12,
	"CHAIN_NOT_ALLOWED",
	grpccodes.FailedPrecondition,
}
var SWAP_NOT_EMPTY = Code[SwapMetadata]{13, "SWAP_NOT_EMPTY", grpccodes.AlreadyExists}
var WRONG_VALIDATOR = Code[ValidatorMetadata]{14, "WRONG_VALIDATOR", grpccodes.PermissionDenied}

var ROYALTY_SELF_PAYMENT = Code[RoyaltyMetadata]{
	15,
	"ROYALTY_SELF_PAYMENT",
	grpccodes.FailedPrecondition,
}
