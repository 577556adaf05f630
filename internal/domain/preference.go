package domain

// ViewMode 表示用户偏好的日程展示方式
type ViewMode string

const (
	ViewModeGrid ViewMode = "grid" // 周网格视图
	ViewModeList ViewMode = "list" // 活动列表视图
)

func (m ViewMode) IsValid() bool {
	switch m {
	case ViewModeGrid, ViewModeList:
		return true
	default:
		return false
	}
}

// Preferences 是用户的展示偏好，通过 settings.Service 显式加载和保存，
// 不允许挂在全局单例上
type Preferences struct {
	UserID    int64    `json:"userID"`
	ViewMode  ViewMode `json:"viewMode"`
	Timezone  string   `json:"timezone"`
	WeekStart int32    `json:"weekStart"` // 0 表示星期日，1 表示星期一
	Version   int32    `json:"-"`
}
