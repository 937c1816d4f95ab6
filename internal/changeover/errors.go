package changeover

import "errors"

// ErrMissingFile 缺少当前款或下一款 OB 文件
var ErrMissingFile = errors.New("ob file is required")
