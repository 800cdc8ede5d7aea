package services

import (
	"errors"
	"fmt"
)

// 业务错误类别，调用方使用 errors.Is 判定。
var (
	// ErrNotFound 表示目标资源不存在。
	ErrNotFound = errors.New("not found")
	// ErrProfileNotFound 表示档案不存在。
	ErrProfileNotFound = fmt.Errorf("profile %w", ErrNotFound)
	// ErrMovieNotFound 表示元数据源确认该目录 ID 不存在。
	ErrMovieNotFound = fmt.Errorf("movie %w", ErrNotFound)
	// ErrListEntryNotFound 表示列表中不存在该影片。
	ErrListEntryNotFound = fmt.Errorf("list entry %w", ErrNotFound)

	// ErrConflict 表示唯一性冲突（uid、username 或同一列表内的影片重复）。
	ErrConflict = errors.New("conflict")
	// ErrInvalidArgument 表示参数不满足前置条件。
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrMetadataFetch 表示元数据源不可用、返回异常或无法解析。
	ErrMetadataFetch = errors.New("metadata fetch failed")
	// ErrStore 表示存储层故障。
	ErrStore = errors.New("store failure")
)

func invalidArgument(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}
