package backend

//go:generate -command mockgen mockgen -package=backend -self_package=github.com/quay/rpmdb/backend
//go:generate mockgen -destination=./backend_mock.go github.com/quay/rpmdb/backend Handle,Cursor
