package service

// Fully-qualified procedure names, mounted as HTTP paths.
const (
	FriendServiceName      = "kinship.v1.FriendService"
	InteractionServiceName = "kinship.v1.InteractionService"
	SettingsServiceName    = "kinship.v1.SettingsService"
	ReminderServiceName    = "kinship.v1.ReminderService"
	AuthServiceName        = "kinship.v1.AuthService"
	ChangeServiceName      = "kinship.v1.ChangeService"
)

const (
	FriendServiceCreateFriendProcedure = "/" + FriendServiceName + "/CreateFriend"
	FriendServiceUpdateFriendProcedure = "/" + FriendServiceName + "/UpdateFriend"
	FriendServiceGetFriendProcedure    = "/" + FriendServiceName + "/GetFriend"
	FriendServiceListFriendsProcedure  = "/" + FriendServiceName + "/ListFriends"
	FriendServiceDeleteFriendProcedure = "/" + FriendServiceName + "/DeleteFriend"
	FriendServiceAddMemoProcedure      = "/" + FriendServiceName + "/AddMemo"
	FriendServiceListMemosProcedure    = "/" + FriendServiceName + "/ListMemos"
	FriendServiceDeleteMemoProcedure   = "/" + FriendServiceName + "/DeleteMemo"

	InteractionServiceLogInteractionProcedure    = "/" + InteractionServiceName + "/LogInteraction"
	InteractionServiceUpdateInteractionProcedure = "/" + InteractionServiceName + "/UpdateInteraction"
	InteractionServiceDeleteInteractionProcedure = "/" + InteractionServiceName + "/DeleteInteraction"
	InteractionServiceListByFriendProcedure      = "/" + InteractionServiceName + "/ListByFriend"
	InteractionServiceTimelineProcedure          = "/" + InteractionServiceName + "/Timeline"
	InteractionServiceFlashbacksProcedure        = "/" + InteractionServiceName + "/Flashbacks"
	InteractionServiceBalanceProcedure           = "/" + InteractionServiceName + "/Balance"

	SettingsServiceGetReminderOffsetsProcedure = "/" + SettingsServiceName + "/GetReminderOffsets"
	SettingsServiceSetReminderOffsetsProcedure = "/" + SettingsServiceName + "/SetReminderOffsets"
	SettingsServiceSetFontProcedure            = "/" + SettingsServiceName + "/SetFont"
	SettingsServiceResetFontProcedure          = "/" + SettingsServiceName + "/ResetFont"
	SettingsServiceGetAppearanceProcedure      = "/" + SettingsServiceName + "/GetAppearance"
	SettingsServiceSetAppearanceProcedure      = "/" + SettingsServiceName + "/SetAppearance"
	SettingsServiceClearAllProcedure           = "/" + SettingsServiceName + "/ClearAll"

	ReminderServicePreviewProcedure = "/" + ReminderServiceName + "/Preview"
	ReminderServiceSyncProcedure    = "/" + ReminderServiceName + "/Sync"

	AuthServiceStatusProcedure        = "/" + AuthServiceName + "/Status"
	AuthServiceSetPasscodeProcedure   = "/" + AuthServiceName + "/SetPasscode"
	AuthServiceClearPasscodeProcedure = "/" + AuthServiceName + "/ClearPasscode"
	AuthServiceUnlockProcedure        = "/" + AuthServiceName + "/Unlock"

	ChangeServiceWatchChangesProcedure = "/" + ChangeServiceName + "/WatchChanges"
)

// PublicProcedures stay reachable while the app is locked.
var PublicProcedures = []string{
	AuthServiceStatusProcedure,
	AuthServiceUnlockProcedure,
	"/healthz",
	"/metrics",
}
