package mocks

//go:generate mockery --name BlobStore --srcpkg github.com/Jomes01/Kioku/internal/core/storage --output ./storage --outpkg storagemocks --with-expecter
//go:generate mockery --name Notifier --srcpkg github.com/Jomes01/Kioku/internal/reminder --output ./reminder --outpkg remindermocks --with-expecter
