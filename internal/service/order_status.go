package service

import "github.com/bistro-next/internal/constants"

// allowedTransitions 订单状态流转表。
// 正向链路 pending → confirmed → preparing → ready → out_for_delivery → delivered，
// cancelled 仅可从 pending / confirmed 进入；delivered 与 cancelled 为终态。
var allowedTransitions = map[string]map[string]bool{
	constants.OrderStatusPending: {
		constants.OrderStatusConfirmed: true,
		constants.OrderStatusCancelled: true,
	},
	constants.OrderStatusConfirmed: {
		constants.OrderStatusPreparing: true,
		constants.OrderStatusCancelled: true,
	},
	constants.OrderStatusPreparing: {
		constants.OrderStatusReady: true,
	},
	constants.OrderStatusReady: {
		constants.OrderStatusOutForDelivery: true,
	},
	constants.OrderStatusOutForDelivery: {
		constants.OrderStatusDelivered: true,
	},
}

func isTransitionAllowed(current, target string) bool {
	nexts, ok := allowedTransitions[current]
	if !ok {
		return false
	}
	return nexts[target]
}

// isTerminalStatus 是否终态
func isTerminalStatus(status string) bool {
	return status == constants.OrderStatusDelivered || status == constants.OrderStatusCancelled
}

// isCancellableStatus 是否允许取消
func isCancellableStatus(status string) bool {
	return status == constants.OrderStatusPending || status == constants.OrderStatusConfirmed
}

// terminalStatuses 归档扫描使用的终态集合
func terminalStatuses() []string {
	return []string{constants.OrderStatusDelivered, constants.OrderStatusCancelled}
}

// cancellableStatuses 允许取消的状态集合（取消时的条件更新用）
func cancellableStatuses() []string {
	return []string{constants.OrderStatusPending, constants.OrderStatusConfirmed}
}

// isValidOrderStatus 是否为已知状态
func isValidOrderStatus(status string) bool {
	switch status {
	case constants.OrderStatusPending,
		constants.OrderStatusConfirmed,
		constants.OrderStatusPreparing,
		constants.OrderStatusReady,
		constants.OrderStatusOutForDelivery,
		constants.OrderStatusDelivered,
		constants.OrderStatusCancelled:
		return true
	default:
		return false
	}
}
