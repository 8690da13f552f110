// Package errors はプロジェクト全体のエラーハンドリングと警告システムを提供します。
// 交差検証の失敗は三種類に分類されます: 実行全体を中断する InvalidArgument、
// 反復単位で記録される InsufficientData、(反復, モデル種別) 単位で記録される FitFailure。
package errors

import (
	"fmt"
	"log"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
)

// ===========================================================================
//
//	グローバル警告ハンドリング
//
// ===========================================================================
var (
	warningMutex   sync.Mutex
	warningHandler = func(w error) {
		// デフォルトのハンドラは標準エラー出力にログを出す
		log.Printf("flexcv-Warning: %v\n", w)
	}
	// zerologロガー（循環importを避けるため遅延初期化）
	zerologWarnFunc func(warning error)
)

// SetWarningHandler は警告ハンドラを設定します。
// 交差検証中の FitFailure などの警告の処理方法を制御できます。
//
// 例:
//
//	errors.SetWarningHandler(func(w error) {
//	    // 警告を無視する
//	})
func SetWarningHandler(handler func(w error)) {
	warningMutex.Lock()
	defer warningMutex.Unlock()
	warningHandler = handler
}

// SetZerologWarnFunc はzerolog警告関数を設定します（循環importを避けるため）。
// nil を渡すと従来のハンドラに戻ります。
func SetZerologWarnFunc(warnFunc func(warning error)) {
	warningMutex.Lock()
	defer warningMutex.Unlock()
	zerologWarnFunc = warnFunc
}

// Warn は警告を発生させます。
// zerologが設定されている場合は構造化ログとして出力し、そうでなければ従来のハンドラを使用します。
func Warn(w error) {
	warningMutex.Lock()
	defer warningMutex.Unlock()

	if zerologWarnFunc != nil {
		zerologWarnFunc(w)
		return
	}

	if warningHandler != nil {
		warningHandler(w)
	}
}

// ===========================================================================
//
//	交差検証のエラー型
//
// ===========================================================================

var (
	// ErrInvalidArgument は事前条件違反を表すセンチネルです。
	ErrInvalidArgument = New("invalid argument")

	// ErrInsufficientData は分割後の部分集合が空であることを表すセンチネルです。
	ErrInsufficientData = New("insufficient data")

	// ErrFitFailure はモデルの学習・予測の失敗を表すセンチネルです。
	ErrFitFailure = New("fit failure")
)

// InvalidArgumentError は引数が事前条件を満たさない場合のエラーです。
// 交差検証の実行全体を直ちに中断します。
type InvalidArgumentError struct {
	Op     string
	Param  string
	Reason string
	Value  interface{}
}

func (e *InvalidArgumentError) Error() string {
	return fmt.Sprintf("flexcv: %s: invalid argument '%s': %s (got: %v)", e.Op, e.Param, e.Reason, e.Value)
}

// Is は ErrInvalidArgument との比較を可能にします。
func (e *InvalidArgumentError) Is(target error) bool {
	return target == ErrInvalidArgument
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *InvalidArgumentError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("operation", e.Op).
		Str("param_name", e.Param).
		Str("reason", e.Reason).
		Interface("value", e.Value).
		Str("type", "InvalidArgumentError")
}

// NewInvalidArgumentError は新しいInvalidArgumentErrorを作成し、スタックトレースを付与します。
func NewInvalidArgumentError(op, param, reason string, value interface{}) error {
	err := &InvalidArgumentError{Op: op, Param: param, Reason: reason, Value: value}
	return errors.WithStack(err)
}

// InsufficientDataError は分割によって学習用またはテスト用の部分集合が空になった場合のエラーです。
// 該当する反復だけが失敗として記録されます。
type InsufficientDataError struct {
	Repetition int
	TrainSize  int
	TestSize   int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("flexcv: repetition %d: insufficient data (train=%d, test=%d); RMSE is undefined",
		e.Repetition, e.TrainSize, e.TestSize)
}

// Is は ErrInsufficientData との比較を可能にします。
func (e *InsufficientDataError) Is(target error) bool {
	return target == ErrInsufficientData
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *InsufficientDataError) MarshalZerologObject(event *zerolog.Event) {
	event.Int("repetition", e.Repetition).
		Int("train_size", e.TrainSize).
		Int("test_size", e.TestSize).
		Str("type", "InsufficientDataError")
}

// NewInsufficientDataError は新しいInsufficientDataErrorを作成し、スタックトレースを付与します。
func NewInsufficientDataError(repetition, trainSize, testSize int) error {
	err := &InsufficientDataError{Repetition: repetition, TrainSize: trainSize, TestSize: testSize}
	return errors.WithStack(err)
}

// Fit failure stages.
const (
	StageFit     = "fit"
	StagePredict = "predict"
	StageScore   = "score"
)

// FitFailureError は特定の (反復, モデル種別) でモデルの学習または予測に失敗した場合のエラーです。
type FitFailureError struct {
	Kind       string
	Repetition int
	Stage      string
	Err        error
}

func (e *FitFailureError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("flexcv: repetition %d: model %q failed to %s: %v", e.Repetition, e.Kind, e.Stage, e.Err)
	}
	return fmt.Sprintf("flexcv: repetition %d: model %q failed to %s", e.Repetition, e.Kind, e.Stage)
}

func (e *FitFailureError) Unwrap() error {
	return e.Err
}

// Is は ErrFitFailure との比較を可能にします。
func (e *FitFailureError) Is(target error) bool {
	return target == ErrFitFailure
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *FitFailureError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("model_kind", e.Kind).
		Int("repetition", e.Repetition).
		Str("stage", e.Stage).
		Str("type", "FitFailureError")
	if e.Err != nil {
		event.Str("cause", e.Err.Error())
	}
}

// NewFitFailureError は新しいFitFailureErrorを作成し、スタックトレースを付与します。
func NewFitFailureError(kind string, repetition int, stage string, err error) error {
	fitErr := &FitFailureError{Kind: kind, Repetition: repetition, Stage: stage, Err: err}
	return errors.WithStack(fitErr)
}

// ===========================================================================
//
//	構造化されたエラー型
//
// ===========================================================================

// NotFittedError はモデルが未学習の状態で `Predict` を呼び出した場合のエラーです。
type NotFittedError struct {
	ModelName string
	Method    string
}

func (e *NotFittedError) Error() string {
	return fmt.Sprintf("flexcv: %s: this model is not fitted yet. Call Fit() before using %s()", e.ModelName, e.Method)
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *NotFittedError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("model_name", e.ModelName).
		Str("method", e.Method).
		Str("type", "NotFittedError")
}

// NewNotFittedError は新しいNotFittedErrorを作成し、スタックトレースを付与します。
func NewNotFittedError(modelName, method string) error {
	err := &NotFittedError{ModelName: modelName, Method: method}
	return errors.WithStack(err)
}

// DimensionError は入力データの次元が期待値と異なる場合のエラーです。
type DimensionError struct {
	Op       string
	Expected int
	Got      int
	Axis     int // 0 for rows, 1 for columns/features
}

func (e *DimensionError) Error() string {
	axisName := "features"
	if e.Axis == 0 {
		axisName = "rows"
	}
	return fmt.Sprintf("flexcv: %s: dimension mismatch on axis %d (%s). Expected %d, got %d", e.Op, e.Axis, axisName, e.Expected, e.Got)
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *DimensionError) MarshalZerologObject(event *zerolog.Event) {
	axisName := "features"
	if e.Axis == 0 {
		axisName = "rows"
	}
	event.Str("operation", e.Op).
		Int("expected", e.Expected).
		Int("got", e.Got).
		Int("axis", e.Axis).
		Str("axis_name", axisName).
		Str("type", "DimensionError")
}

// NewDimensionError は新しいDimensionErrorを作成し、スタックトレースを付与します。
func NewDimensionError(op string, expected, got, axis int) error {
	err := &DimensionError{Op: op, Expected: expected, Got: got, Axis: axis}
	return errors.WithStack(err)
}

// ValueError は引数の値が不適切または不正な場合に発生するエラーです。
type ValueError struct {
	Op      string
	Message string
}

func (e *ValueError) Error() string {
	return fmt.Sprintf("flexcv: %s: %s", e.Op, e.Message)
}

// NewValueError は新しいValueErrorを作成し、スタックトレースを付与します。
func NewValueError(op, message string) error {
	err := &ValueError{Op: op, Message: message}
	return errors.WithStack(err)
}

// ModelError は回帰モデルに関する一般的なエラーです。
type ModelError struct {
	Op   string
	Kind string
	Err  error
}

func (e *ModelError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("flexcv: %s: %s: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("flexcv: %s: %s", e.Op, e.Kind)
}

func (e *ModelError) Unwrap() error {
	return e.Err
}

// NewModelError は新しいModelErrorを作成し、スタックトレースを付与します。
func NewModelError(op, kind string, err error) error {
	modelErr := &ModelError{Op: op, Kind: kind, Err: err}
	return errors.WithStack(modelErr)
}

// NumericalInstabilityError は数値計算が不安定になった場合のエラーです。
// 予測値の NaN や Inf を検出します。
type NumericalInstabilityError struct {
	Operation string    // 発生した操作（例: "predict", "rmse"）
	Values    []float64 // 問題のある値
	Index     int       // 最初に問題が見つかった位置
}

func (e *NumericalInstabilityError) Error() string {
	valStr := ""
	for i, v := range e.Values {
		if i > 0 {
			valStr += ", "
		}
		if i >= 5 {
			valStr += "..."
			break
		}
		valStr += fmt.Sprintf("%.6g", v)
	}
	return fmt.Sprintf("flexcv: numerical instability detected in %s at index %d. Values: [%s]",
		e.Operation, e.Index, valStr)
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *NumericalInstabilityError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("operation", e.Operation).
		Int("index", e.Index).
		Floats64("values", e.Values).
		Str("type", "NumericalInstabilityError")
}

// NewNumericalInstabilityError は新しいNumericalInstabilityErrorを作成します。
func NewNumericalInstabilityError(operation string, values []float64, index int) error {
	err := &NumericalInstabilityError{
		Operation: operation,
		Values:    values,
		Index:     index,
	}
	return errors.WithStack(err)
}

// ===========================================================================
//
//	cockroachdb/errors ラッパー関数
//
// ===========================================================================

// Is はエラーが特定のターゲットエラーかどうかを判定します。
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As はエラーが特定の型にキャスト可能かどうかを判定します。
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// Wrap は既存のエラーをメッセージ付きでラップします。
func Wrap(err error, message string) error {
	return errors.Wrap(err, message)
}

// Wrapf は既存のエラーをフォーマット文字列でラップします。
func Wrapf(err error, format string, args ...interface{}) error {
	return errors.Wrapf(err, format, args...)
}

// New は新しいエラーを作成します。
func New(message string) error {
	return errors.New(message)
}

// Newf は新しいフォーマット済みエラーを作成します。
func Newf(format string, args ...interface{}) error {
	return errors.Newf(format, args...)
}

// WithStack はエラーにスタックトレースを付与します。
func WithStack(err error) error {
	return errors.WithStack(err)
}

// ===========================================================================
//
//	共通エラー変数
//
// ===========================================================================

var (
	// ErrEmptyData は空のデータが渡された場合のエラーです。
	ErrEmptyData = New("empty data")

	// ErrSingularMatrix は特異行列の場合のエラーです。
	ErrSingularMatrix = New("singular matrix")
)
